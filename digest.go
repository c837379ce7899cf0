package novapay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	goerrors "github.com/goliatone/go-errors"
)

// DigestDelimiter separates the raw password from the normalized email in
// the digest input, so equal passwords on different accounts produce
// different stored digests.
const DigestDelimiter = ":"

// SHA256Digester digests password material with SHA-256. It is the default
// PasswordDigester.
type SHA256Digester struct{}

var _ PasswordDigester = SHA256Digester{}

// Digest returns the lowercase hex SHA-256 of password + ":" + email.
// The email is expected to be normalized already. Digesting is the only
// suspension point in the auth flow, so it honors context cancellation.
func (SHA256Digester) Digest(ctx context.Context, password, email string) (string, error) {
	select {
	case <-ctx.Done():
		return "", goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password digest",
		)
	default:
	}

	sum := sha256.Sum256([]byte(password + DigestDelimiter + email))
	return hex.EncodeToString(sum[:]), nil
}
