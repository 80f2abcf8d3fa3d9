package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	a := UserUUID("ann")
	b := UserUUID(" ann ")
	if a == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if a != b {
		t.Fatalf("expected stable uuid, got %s and %s", a, b)
	}
	if a == UserUUID("bob") {
		t.Fatal("expected different users to get different uuids")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if UUID("  ") != uuid.Nil {
		t.Fatal("expected nil uuid for blank key")
	}
	if UserUUID("") != uuid.Nil {
		t.Fatal("expected nil uuid for blank shortname")
	}
}

func TestObjectUUIDSeparatesTypes(t *testing.T) {
	if ObjectUUID("post", "go") == ObjectUUID("tag", "go") {
		t.Fatal("expected type prefix to separate keys")
	}
	if ObjectUUID("Post", "go") != ObjectUUID("post", "go") {
		t.Fatal("expected object type to be case insensitive")
	}
}
