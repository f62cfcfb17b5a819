package claims

import (
	"errors"
	"testing"

	"github.com/dropDatabas3/loginbridge/internal/idtoken"
	"github.com/dropDatabas3/loginbridge/internal/settings"
)

func TestExtractUsername(t *testing.T) {
	c := idtoken.Claims{
		"sub":                              "abc",
		"cognito:username":                 "alice",
		"employee_id":                      float64(12345678901),
		"ratio":                            1.5,
		"admin":                            true,
		"blank":                            "   ",
		"groups":                           []any{"a"},
		"addr":                             map[string]any{"city": "Rosario"},
		"nil":                              nil,
		"https://app.example/claims/login": "ns-alice",
	}

	cases := []struct {
		attr string
		want string
		err  bool
	}{
		{"cognito:username", "alice", false},
		{"employee_id", "12345678901", false},
		{"ratio", "1.5", false},
		{"admin", "true", false},
		{"addr.city", "Rosario", false},
		{"https://app.example/claims/login", "ns-alice", false},
		{"missing", "", true},
		{"blank", "", true},
		{"groups", "", true},
		{"addr", "", true},
		{"nil", "", true},
		{"addr.zip", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ExtractUsername(c, tc.attr)
		if tc.err {
			if !errors.Is(err, ErrMissingAttribute) {
				t.Fatalf("%q: want ErrMissingAttribute, got %v (%q)", tc.attr, err, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %q, %v want %q", tc.attr, got, err, tc.want)
		}
	}
}

func TestExtractProfile(t *testing.T) {
	snap := settings.FromMap(map[string]string{settings.KeyNameAttribute: "given_name"})
	p := ExtractProfile(idtoken.Claims{"email": "a@example.com", "given_name": "Alice", "name": "ignored"}, snap)
	if p.Email != "a@example.com" || p.DisplayName != "Alice" {
		t.Fatalf("profile = %+v", p)
	}

	p = ExtractProfile(idtoken.Claims{"email": []any{"x"}}, settings.FromMap(nil))
	if p != (Profile{}) {
		t.Fatalf("non-scalar email should be dropped: %+v", p)
	}
}
