package novapay

import (
	"strings"
	"time"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// Account is one enrolled user. The JSON shape is the persisted wire
// format of the accounts blob, so field tags must not change.
type Account struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	PasswordDigest string `json:"pass"`
	CreatedAt      int64  `json:"createdAt"`
}

// CreatedTime returns CreatedAt as a time.Time. CreatedAt is stored as
// epoch milliseconds.
func (a Account) CreatedTime() time.Time {
	return time.UnixMilli(a.CreatedAt)
}

// SessionMarker points at the account that is currently authenticated in
// this storage instance. It is not a source of truth: it must be
// re-resolved against the account collection on every restore.
type SessionMarker struct {
	Email         string `json:"email"`
	EstablishedAt int64  `json:"t"`
}

// EstablishedTime returns EstablishedAt as a time.Time.
func (m SessionMarker) EstablishedTime() time.Time {
	return time.UnixMilli(m.EstablishedAt)
}

// NormalizeEmail lowercases and trims an email so it can act as the unique
// account key. Every read and write site must use it, or uniqueness breaks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func findAccount(accounts []Account, email string) (Account, bool) {
	for _, account := range accounts {
		if account.Email == email {
			return account, true
		}
	}
	return Account{}, false
}
