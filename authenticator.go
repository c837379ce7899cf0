package novapay

import (
	"context"
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type localIdentity struct {
	name  string
	email string
}

func (i localIdentity) Name() string  { return i.name }
func (i localIdentity) Email() string { return i.email }

var _ Identity = localIdentity{}

// ChangeListener is notified after every auth state transition. The
// identity is nil when the state is anonymous.
type ChangeListener func(identity Identity, authenticated bool)

// AuthController orchestrates signup, login, logout, session restore, and
// checkout gating against a CredentialStore, a SessionManager, and a
// PasswordDigester. It is the exclusive owner of the in-memory identity;
// everything else reads it through CurrentIdentity or an OnChange listener.
type AuthController struct {
	mu           sync.Mutex
	accounts     *CredentialStore
	sessions     *SessionManager
	digester     PasswordDigester
	config       Config
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time
	current      *localIdentity
	pending      uuid.UUID
	listeners    []ChangeListener
}

// NewAuthController returns a new AuthController backed by storage.
func NewAuthController(storage Storage, config Config) *AuthController {
	logger := defLogger{}
	return &AuthController{
		accounts:     NewCredentialStore(storage).WithLogger(logger),
		sessions:     NewSessionManager(storage).WithLogger(logger),
		digester:     SHA256Digester{},
		config:       config,
		logger:       logger,
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

func (a *AuthController) WithLogger(logger Logger) *AuthController {
	if logger != nil {
		a.logger = logger
		a.accounts.WithLogger(logger)
		a.sessions.WithLogger(logger)
	}
	return a
}

// WithDigester sets a custom PasswordDigester. Changing digesters
// invalidates digests stored by the previous one.
func (a *AuthController) WithDigester(digester PasswordDigester) *AuthController {
	if digester != nil {
		a.digester = digester
	}
	return a
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (a *AuthController) WithActivitySink(sink ActivitySink) *AuthController {
	a.activitySink = normalizeActivitySink(sink)
	return a
}

// WithClock injects a custom clock (useful for tests).
func (a *AuthController) WithClock(clock func() time.Time) *AuthController {
	if clock != nil {
		a.now = clock
		a.sessions.WithClock(clock)
	}
	return a
}

// OnChange registers a listener invoked after every state transition.
func (a *AuthController) OnChange(listener ChangeListener) {
	if listener == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, listener)
}

// CurrentIdentity returns the in-memory identity, if any.
func (a *AuthController) CurrentIdentity() (Identity, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		return nil, false
	}
	return *a.current, true
}

// IsAuthenticated reports whether an identity is present.
func (a *AuthController) IsAuthenticated() bool {
	_, ok := a.CurrentIdentity()
	return ok
}

// Restore resolves the persisted session marker against the account
// collection at process start. A marker whose account no longer exists is
// cleared rather than left behind, so the next visit starts clean.
func (a *AuthController) Restore(ctx context.Context) (Identity, bool) {
	marker, ok := a.sessions.GetSession(ctx)
	if !ok {
		a.setIdentity(nil)
		return nil, false
	}

	email := NormalizeEmail(marker.Email)
	account, found := findAccount(a.accounts.ListAccounts(ctx), email)
	if !found {
		if err := a.sessions.ClearSession(ctx); err != nil {
			a.logger.Warn("failed to clear stale session marker", "error", err)
		}
		a.emitEvent(ctx, ActivityEventSessionInvalidated, email, nil)
		a.setIdentity(nil)
		return nil, false
	}

	identity := localIdentity{name: account.Name, email: account.Email}
	a.setIdentity(&identity)
	a.emitEvent(ctx, ActivityEventSessionRestored, account.Email, nil)

	return identity, true
}

// Signup enrolls a new account and authenticates it. On any failure the
// persisted collection and session marker are left untouched.
func (a *AuthController) Signup(ctx context.Context, req SignupRequest) (Identity, error) {
	token, err := a.beginSubmission()
	if err != nil {
		return nil, err
	}
	defer a.endSubmission(token)

	name := strings.TrimSpace(req.Name)
	email := NormalizeEmail(req.Email)
	req.Name, req.Email = name, email

	if len(req.Password) < MinPasswordLength {
		a.emitEvent(ctx, ActivityEventSignupFailure, email, map[string]any{
			"error": ErrWeakPassword.Error(),
		})
		return nil, ErrWeakPassword
	}

	if err := req.Validate(); err != nil {
		a.emitEvent(ctx, ActivityEventSignupFailure, email, map[string]any{
			"error": err.Error(),
		})
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid signup request")
	}

	accounts := a.accounts.ListAccounts(ctx)
	if _, exists := findAccount(accounts, email); exists {
		a.emitEvent(ctx, ActivityEventSignupFailure, email, map[string]any{
			"error": ErrDuplicateAccount.Error(),
		})
		return nil, ErrDuplicateAccount.WithMetadata(map[string]any{"email": email})
	}

	digest, err := a.digester.Digest(ctx, req.Password, email)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to digest password")
	}

	account := Account{
		Name:           name,
		Email:          email,
		PasswordDigest: digest,
		CreatedAt:      a.now().UnixMilli(),
	}

	if err := a.accounts.SaveAccounts(ctx, append(accounts, account)); err != nil {
		return nil, err
	}

	if err := a.sessions.SetSession(ctx, email); err != nil {
		return nil, err
	}

	identity := localIdentity{name: name, email: email}
	a.setIdentity(&identity)
	a.emitEvent(ctx, ActivityEventSignupSuccess, email, nil)

	return identity, nil
}

// Login verifies credentials against the stored digest and authenticates.
// Neither failure path touches the session marker.
func (a *AuthController) Login(ctx context.Context, req LoginRequest) (Identity, error) {
	token, err := a.beginSubmission()
	if err != nil {
		return nil, err
	}
	defer a.endSubmission(token)

	email := NormalizeEmail(req.Email)
	req.Email = email

	if err := req.Validate(); err != nil {
		a.emitEvent(ctx, ActivityEventLoginFailure, email, map[string]any{
			"error": err.Error(),
		})
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid login request")
	}

	account, found := findAccount(a.accounts.ListAccounts(ctx), email)
	if !found {
		a.emitEvent(ctx, ActivityEventLoginFailure, email, map[string]any{
			"error": ErrAccountNotFound.Error(),
		})
		return nil, ErrAccountNotFound.WithMetadata(map[string]any{"email": email})
	}

	digest, err := a.digester.Digest(ctx, req.Password, email)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to digest password")
	}

	if subtle.ConstantTimeCompare([]byte(digest), []byte(account.PasswordDigest)) != 1 {
		a.emitEvent(ctx, ActivityEventLoginFailure, email, map[string]any{
			"error": ErrInvalidCredentials.Error(),
		})
		return nil, ErrInvalidCredentials.WithMetadata(map[string]any{"email": email})
	}

	if err := a.sessions.SetSession(ctx, email); err != nil {
		return nil, err
	}

	identity := localIdentity{name: account.Name, email: account.Email}
	a.setIdentity(&identity)
	a.emitEvent(ctx, ActivityEventLoginSuccess, email, nil)

	return identity, nil
}

// Logout clears the session marker and drops the identity. It is
// unconditional and idempotent: calling it while anonymous still removes
// any lingering marker and never reports a failure to the caller.
func (a *AuthController) Logout(ctx context.Context) {
	if err := a.sessions.ClearSession(ctx); err != nil {
		a.logger.Warn("failed to clear session marker on logout", "error", err)
	}

	email := ""
	if identity, ok := a.CurrentIdentity(); ok {
		email = identity.Email()
	}

	a.setIdentity(nil)
	a.emitEvent(ctx, ActivityEventLogout, email, nil)
}

// RequestCheckout yields the configured redirect target for authenticated
// visitors. The caller is responsible for actually navigating to it.
func (a *AuthController) RequestCheckout(ctx context.Context) (string, error) {
	identity, ok := a.CurrentIdentity()
	if !ok {
		a.emitEvent(ctx, ActivityEventCheckoutDenied, "", map[string]any{
			"error": ErrAuthRequired.Error(),
		})
		return "", ErrAuthRequired
	}

	link := ""
	if a.config != nil {
		link = a.config.GetPaymentLink()
		if link == "" {
			link = a.config.GetRazorpayLink()
		}
	}

	if link == "" {
		a.emitEvent(ctx, ActivityEventCheckoutDenied, identity.Email(), map[string]any{
			"error": ErrPaymentNotConfigured.Error(),
		})
		return "", ErrPaymentNotConfigured
	}

	a.emitEvent(ctx, ActivityEventCheckoutGranted, identity.Email(), map[string]any{
		"target": link,
	})

	return link, nil
}

// beginSubmission claims the single in-flight slot for a form submission.
// The token identifies the claim so only its owner releases it.
func (a *AuthController) beginSubmission() (uuid.UUID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending != uuid.Nil {
		return uuid.Nil, ErrSubmissionInFlight
	}

	token := uuid.New()
	a.pending = token
	return token, nil
}

func (a *AuthController) endSubmission(token uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending == token {
		a.pending = uuid.Nil
	}
}

func (a *AuthController) setIdentity(identity *localIdentity) {
	a.mu.Lock()
	a.current = identity
	listeners := make([]ChangeListener, len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	for _, listener := range listeners {
		if identity == nil {
			listener(nil, false)
		} else {
			listener(*identity, true)
		}
	}
}

func (a *AuthController) emitEvent(ctx context.Context, eventType ActivityEventType, email string, metadata map[string]any) {
	sink := normalizeActivitySink(a.activitySink)
	event := ActivityEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Email:     email,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = a.now()
	}

	if err := sink.Record(ctx, event); err != nil {
		a.logger.Warn("activity sink record error: %v", err)
	}
}
