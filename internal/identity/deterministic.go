package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
// Keys should be prefixed by record type to avoid collisions.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// UserUUID is the stable UUID for a user shortname.
func UserUUID(shortname string) uuid.UUID {
	shortname = strings.TrimSpace(shortname)
	if shortname == "" {
		return uuid.Nil
	}
	return UUID("go-blog:user:" + shortname)
}

// ObjectUUID is the stable UUID for a record of objectType keyed by key.
func ObjectUUID(objectType, key string) uuid.UUID {
	return UUID("go-blog:" + strings.ToLower(strings.TrimSpace(objectType)) + ":" + strings.TrimSpace(key))
}
