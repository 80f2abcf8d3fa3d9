package password

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	hashed, err := Hash("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hashed == "s3cret" {
		t.Fatal("expected hash to differ from plain text")
	}
	if !Compare(hashed, "s3cret") {
		t.Fatal("expected matching password")
	}
	if Compare(hashed, "wrong") {
		t.Fatal("expected mismatch for wrong password")
	}
}

func TestHashRejectsEmpty(t *testing.T) {
	if _, err := Hash("", bcrypt.MinCost); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestHashClampsInvalidCost(t *testing.T) {
	hashed, err := Hash("pw", 1)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != DefaultCost {
		t.Fatalf("expected default cost %d, got %d", DefaultCost, cost)
	}
}

func TestCompareEmptyHash(t *testing.T) {
	if Compare("", "pw") {
		t.Fatal("expected empty hash to never match")
	}
}
