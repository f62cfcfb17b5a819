package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second Register: %v", err)
	}

	before := testutil.ToFloat64(LoginAttempts.WithLabelValues("success"))
	LoginAttempts.WithLabelValues("success").Inc()
	if got := testutil.ToFloat64(LoginAttempts.WithLabelValues("success")); got != before+1 {
		t.Fatalf("counter = %v, want %v", got, before+1)
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                "/",
		"/":               "/",
		"/me":             "/me",
		"/users/42/posts": "/users/:param/posts",
		"/u/550e8400-e29b-41d4-a716-446655440000":    "/u/:param",
		"/assets/app.css?v=1":                        "/assets/app.css",
		"/t/AbCdEfGhIjKlMnOpQrStUvWxYz012345/detail": "/t/:param/detail",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegisterDBPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	stat := PoolStat{Acquired: 2, Idle: 3, Total: 5}
	if err := RegisterDBPool(reg, "postgres", func() (PoolStat, bool) { return stat, true }); err != nil {
		t.Fatalf("RegisterDBPool: %v", err)
	}
	if n, err := testutil.GatherAndCount(reg, "store_pool_total", "store_pool_idle"); err != nil || n != 2 {
		t.Fatalf("GatherAndCount = %d, %v", n, err)
	}
}

func TestRegisterHTTP_ReturnsHandler(t *testing.T) {
	h, err := RegisterHTTP(prometheus.NewRegistry())
	if err != nil || h == nil {
		t.Fatalf("RegisterHTTP = %v, %v", h, err)
	}
}
