package model

import (
	"fmt"
	"strconv"
	"strings"
)

// OwnerKey identifies who a cart belongs to: either an authenticated
// user ("user:<id>") or an anonymous guest session ("session:<uuid>").
// A cart has exactly one owner at a time.
type OwnerKey string

func UserOwner(userID int64) OwnerKey {
	return OwnerKey(fmt.Sprintf("user:%d", userID))
}

func SessionOwner(sessionID string) OwnerKey {
	return OwnerKey("session:" + sessionID)
}

func (k OwnerKey) IsUser() bool {
	return strings.HasPrefix(string(k), "user:")
}

// UserID returns the numeric user id when the key is a user key.
func (k OwnerKey) UserID() (int64, bool) {
	if !k.IsUser() {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(string(k), "user:"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (k OwnerKey) Valid() bool {
	if k.IsUser() {
		_, ok := k.UserID()
		return ok
	}
	return strings.HasPrefix(string(k), "session:") && len(k) > len("session:")
}
