package password

import (
	"strings"
	"testing"
)

var cheap = Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16}

func TestHashVerify(t *testing.T) {
	phc, err := Hash(cheap, "correct horse")
	if err != nil {
		t.Fatalf("Hash err: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected PHC: %s", phc)
	}
	if !Verify("correct horse", phc) {
		t.Fatal("Verify should accept the original password")
	}
	if Verify("wrong", phc) {
		t.Fatal("Verify should reject a different password")
	}
}

func TestHash_SaltIsRandom(t *testing.T) {
	a, _ := Hash(cheap, "x")
	b, _ := Hash(cheap, "x")
	if a == b {
		t.Fatal("two hashes of the same input must differ")
	}
}

func TestVerify_Garbage(t *testing.T) {
	for _, phc := range []string{"", "$argon2id$", "$bcrypt$v=19$m=1,t=1,p=1$AA$AA", "$argon2id$v=18$m=1,t=1,p=1$AA$AA"} {
		if Verify("x", phc) {
			t.Fatalf("Verify(%q) should be false", phc)
		}
	}
}

func TestHash_EmptyRejected(t *testing.T) {
	if _, err := Hash(cheap, ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
