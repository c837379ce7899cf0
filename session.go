package novapay

import (
	"context"
	"encoding/json"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// SessionKey is the storage key the session marker lives under.
const SessionKey = "novapay_session"

// SessionManager owns the single session marker. At most one marker exists
// at a time; SetSession overwrites, ClearSession removes. Markers carry no
// expiry and stay valid until cleared or until the referenced account
// disappears.
type SessionManager struct {
	storage Storage
	logger  Logger
	now     func() time.Time
}

func NewSessionManager(storage Storage) *SessionManager {
	return &SessionManager{
		storage: storage,
		logger:  defLogger{},
		now:     time.Now,
	}
}

func (m *SessionManager) WithLogger(logger Logger) *SessionManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithClock injects a custom clock (useful for tests).
func (m *SessionManager) WithClock(clock func() time.Time) *SessionManager {
	if clock != nil {
		m.now = clock
	}
	return m
}

// SetSession persists a marker for email, replacing any prior marker.
func (m *SessionManager) SetSession(ctx context.Context, email string) error {
	marker := SessionMarker{
		Email:         email,
		EstablishedAt: m.now().UnixMilli(),
	}

	raw, err := json.Marshal(marker)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session marker")
	}

	if err := m.storage.Set(ctx, SessionKey, raw); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session marker")
	}

	return nil
}

// GetSession returns the current marker, or ok=false when none exists or
// the persisted value is malformed.
func (m *SessionManager) GetSession(ctx context.Context) (SessionMarker, bool) {
	raw, ok, err := m.storage.Get(ctx, SessionKey)
	if err != nil {
		m.logger.Debug("session blob unreadable, treating as absent", "error", err)
		return SessionMarker{}, false
	}
	if !ok {
		return SessionMarker{}, false
	}

	marker, err := DecodeSessionMarker(raw)
	if err != nil {
		m.logger.Debug("session blob malformed, treating as absent", "error", err)
		return SessionMarker{}, false
	}

	return marker, true
}

// ClearSession removes the marker entirely. Clearing an absent marker is a
// no-op.
func (m *SessionManager) ClearSession(ctx context.Context) error {
	if err := m.storage.Delete(ctx, SessionKey); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear session marker")
	}
	return nil
}

// DecodeSessionMarker is the typed deserialization step for the session
// blob. A marker without an email is malformed.
func DecodeSessionMarker(raw []byte) (SessionMarker, error) {
	var marker SessionMarker
	if err := json.Unmarshal(raw, &marker); err != nil {
		return SessionMarker{}, ErrMalformedRecord.WithMetadata(map[string]any{
			"key":   SessionKey,
			"cause": err.Error(),
		})
	}

	if marker.Email == "" {
		return SessionMarker{}, ErrMalformedRecord.WithMetadata(map[string]any{
			"key":   SessionKey,
			"cause": "marker has no email",
		})
	}

	return marker, nil
}
