package novapay

import (
	"context"
	"encoding/json"

	goerrors "github.com/goliatone/go-errors"
)

// AccountsKey is the storage key the accounts blob lives under.
const AccountsKey = "novapay_users"

// CredentialStore owns the persisted account collection. It never reports
// read problems to callers: an absent, unreadable, or malformed blob reads
// as an empty collection, which keeps first-visit and wiped-storage flows
// identical.
type CredentialStore struct {
	storage Storage
	logger  Logger
}

func NewCredentialStore(storage Storage) *CredentialStore {
	return &CredentialStore{
		storage: storage,
		logger:  defLogger{},
	}
}

func (s *CredentialStore) WithLogger(logger Logger) *CredentialStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// ListAccounts returns the full persisted collection. Corruption is
// downgraded to an empty collection here, at the boundary, so callers can
// treat the result as authoritative.
func (s *CredentialStore) ListAccounts(ctx context.Context) []Account {
	raw, ok, err := s.storage.Get(ctx, AccountsKey)
	if err != nil {
		s.logger.Debug("accounts blob unreadable, treating as empty", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	accounts, err := DecodeAccounts(raw)
	if err != nil {
		s.logger.Debug("accounts blob malformed, treating as empty", "error", err)
		return nil
	}

	return accounts
}

// SaveAccounts replaces the persisted collection in a single write.
func (s *CredentialStore) SaveAccounts(ctx context.Context, accounts []Account) error {
	raw, err := json.Marshal(accounts)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode accounts")
	}

	if err := s.storage.Set(ctx, AccountsKey, raw); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist accounts")
	}

	return nil
}

// DecodeAccounts is the typed deserialization step for the accounts blob.
// Callers that want the lenient read should use ListAccounts; this exists
// so the corruption fallback is explicit and testable.
func DecodeAccounts(raw []byte) ([]Account, error) {
	var accounts []Account
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, ErrMalformedRecord.WithMetadata(map[string]any{
			"key":   AccountsKey,
			"cause": err.Error(),
		})
	}
	return accounts, nil
}
