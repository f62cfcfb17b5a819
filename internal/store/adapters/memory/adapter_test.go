package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dropDatabas3/loginbridge/internal/domain/repository"
)

func TestCreate_ConcurrentSameUsername(t *testing.T) {
	conn := New()
	ctx := context.Background()

	var ok, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := conn.Users().Create(ctx, repository.CreateUserInput{Username: "alice"})
			switch {
			case err == nil:
				ok.Add(1)
			case repository.IsConflict(err):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected err: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || conflicts.Load() != 15 {
		t.Fatalf("ok=%d conflicts=%d", ok.Load(), conflicts.Load())
	}
	if n := conn.UserStore().Len(); n != 1 {
		t.Fatalf("want 1 user, got %d", n)
	}
}

func TestFindByUsername_ReturnsCopy(t *testing.T) {
	conn := New()
	ctx := context.Background()
	u, err := conn.Users().Create(ctx, repository.CreateUserInput{Username: "bob", Email: "b@x"})
	if err != nil {
		t.Fatal(err)
	}
	u.Email = "mutated"

	got, err := conn.Users().FindByUsername(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != "b@x" {
		t.Fatalf("store leaked pointer: %q", got.Email)
	}
}
