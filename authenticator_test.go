package novapay_test

import (
	"context"
	"testing"
	"time"

	novapay "github.com/jayxmukati/NovaPay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(storage novapay.Storage) *novapay.AuthController {
	return novapay.NewAuthController(storage, novapay.PaymentConfig{
		PaymentLink: "https://pay.example.com/checkout",
	})
}

func TestSignupCreatesAccountAndSession(t *testing.T) {
	ctx := context.Background()
	storage := novapay.NewMemoryStorage()
	controller := newTestController(storage)

	identity, err := controller.Signup(ctx, novapay.SignupRequest{
		Name:     "Ada",
		Email:    "Ada@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", identity.Name())
	assert.Equal(t, "ada@example.com", identity.Email())

	accounts := novapay.NewCredentialStore(storage).ListAccounts(ctx)
	require.Len(t, accounts, 1)
	assert.Equal(t, "ada@example.com", accounts[0].Email)

	expected, err := novapay.SHA256Digester{}.Digest(ctx, "secret1", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, expected, accounts[0].PasswordDigest)

	marker, ok := novapay.NewSessionManager(storage).GetSession(ctx)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", marker.Email)

	current, ok := controller.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", current.Email())
}

func TestSignupGrowsCollectionByOne(t *testing.T) {
	ctx := context.Background()
	storage := novapay.NewMemoryStorage()
	controller := newTestController(storage)

	emails := []string{"a@x.com", "b@x.com", "c@x.com"}
	for i, email := range emails {
		_, err := controller.Signup(ctx, novapay.SignupRequest{
			Name:     "User",
			Email:    email,
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.Len(t, novapay.NewCredentialStore(storage).ListAccounts(ctx), i+1)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	storage := novapay.NewMemoryStorage()
	controller := newTestController(storage)

	_, err := controller.Signup(ctx, novapay.SignupRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	// same email after normalization
	_, err = controller.Signup(ctx, novapay.SignupRequest{
		Name:     "Imposter",
		Email:    " ADA@example.com ",
		Password: "different1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, novapay.ErrDuplicateAccount)
	assert.Len(t, novapay.NewCredentialStore(storage).ListAccounts(ctx), 1)
}

func TestSignupWeakPassword(t *testing.T) {
	ctx := context.Background()
	storage := novapay.NewMemoryStorage()
	controller := newTestController(storage)

	_, err := controller.Signup(ctx, novapay.SignupRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "short",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, novapay.ErrWeakPassword)

	assert.Empty(t, novapay.NewCredentialStore(storage).ListAccounts(ctx))
	_, ok := novapay.NewSessionManager(storage).GetSession(ctx)
	assert.False(t, ok)
	assert.False(t, controller.IsAuthenticated())
}

func TestSignupInvalidPayload(t *testing.T) {
	ctx := context.Background()
	controller := newTestController(novapay.NewMemoryStorage())

	_, err := controller.Signup(ctx, novapay.SignupRequest{
		Name:     "",
		Email:    "not-an-email",
		Password: "secret1",
	})
	require.Error(t, err)
	assert.False(t, controller.IsAuthenticated())
}

func TestLoginFlows(t *testing.T) {
	ctx := context.Background()
	storage := novapay.NewMemoryStorage()
	controller := newTestController(storage)

	_, err := controller.Signup(ctx, novapay.SignupRequest{
		Name:     "Ada",
		Email:    "Ada@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	controller.Logout(ctx)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "Unknown email",
			email:    "missing@example.com",
			password: "secret1",
			wantErr:  novapay.ErrAccountNotFound,
		},
		{
			name:     "Wrong password",
			email:    "ada@example.com",
			password: "wrong-secret",
			wantErr:  novapay.ErrInvalidCredentials,
		},
		{
			name:     "Correct credentials, normalized email",
			email:    " ADA@EXAMPLE.COM ",
			password: "secret1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := controller.Login(ctx, novapay.LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			})

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				// failed logins never touch the session marker
				_, ok := novapay.NewSessionManager(storage).GetSession(ctx)
				assert.False(t, ok)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Ada", identity.Name(), "login must resolve the stored display name")
			assert.Equal(t, "ada@example.com", identity.Email())

			marker, ok := novapay.NewSessionManager(storage).GetSession(ctx)
			require.True(t, ok)
			assert.Equal(t, "ada@example.com", marker.Email)
		})
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	storage := novapay.NewMemoryStorage()
	controller := newTestController(storage)

	// a lingering marker with no live login
	require.NoError(t, novapay.NewSessionManager(storage).SetSession(ctx, "ada@example.com"))

	controller.Logout(ctx)
	_, ok := novapay.NewSessionManager(storage).GetSession(ctx)
	assert.False(t, ok, "logout clears lingering markers even when anonymous")

	// logging out again stays a no-op
	controller.Logout(ctx)
	assert.False(t, controller.IsAuthenticated())
}

func TestRestoreResolvesMarkerAgainstAccounts(t *testing.T) {
	ctx := context.Background()
	storage := novapay.NewMemoryStorage()

	seed := newTestController(storage)
	_, err := seed.Signup(ctx, novapay.SignupRequest{
		Name:     "Ada",
		Email:    "a@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	// a fresh controller simulates the next page load
	controller := newTestController(storage)
	identity, ok := controller.Restore(ctx)
	require.True(t, ok)
	assert.Equal(t, "Ada", identity.Name())
	assert.Equal(t, "a@x.com", identity.Email())
}

func TestRestoreWithStaleMarker(t *testing.T) {
	ctx := context.Background()
	storage := novapay.NewMemoryStorage()
	sessions := novapay.NewSessionManager(storage)

	require.NoError(t, sessions.SetSession(ctx, "ghost@x.com"))

	controller := newTestController(storage)
	_, ok := controller.Restore(ctx)
	assert.False(t, ok)
	assert.False(t, controller.IsAuthenticated())

	// the unresolvable marker is cleared so the next visit starts clean
	_, ok = sessions.GetSession(ctx)
	assert.False(t, ok)
}

func TestRequestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("Anonymous visitor is rejected", func(t *testing.T) {
		controller := newTestController(novapay.NewMemoryStorage())

		_, err := controller.RequestCheckout(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, novapay.ErrAuthRequired)
	})

	t.Run("Authenticated visitor gets the configured target", func(t *testing.T) {
		controller := newTestController(novapay.NewMemoryStorage())
		_, err := controller.Signup(ctx, novapay.SignupRequest{
			Name:     "Ada",
			Email:    "ada@example.com",
			Password: "secret1",
		})
		require.NoError(t, err)

		link, err := controller.RequestCheckout(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example.com/checkout", link)
	})

	t.Run("Razorpay link is the fallback", func(t *testing.T) {
		controller := novapay.NewAuthController(novapay.NewMemoryStorage(), novapay.PaymentConfig{
			RazorpayLink: "https://rzp.example.com/l/demo",
		})
		_, err := controller.Signup(ctx, novapay.SignupRequest{
			Name:     "Ada",
			Email:    "ada@example.com",
			Password: "secret1",
		})
		require.NoError(t, err)

		link, err := controller.RequestCheckout(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://rzp.example.com/l/demo", link)
	})

	t.Run("No link configured", func(t *testing.T) {
		controller := novapay.NewAuthController(novapay.NewMemoryStorage(), novapay.PaymentConfig{})
		_, err := controller.Signup(ctx, novapay.SignupRequest{
			Name:     "Ada",
			Email:    "ada@example.com",
			Password: "secret1",
		})
		require.NoError(t, err)

		_, err = controller.RequestCheckout(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, novapay.ErrPaymentNotConfigured)
	})
}

func TestSubmissionInFlightGuard(t *testing.T) {
	ctx := context.Background()
	digester := newBlockingDigester()
	controller := newTestController(novapay.NewMemoryStorage()).WithDigester(digester)

	done := make(chan error, 1)
	go func() {
		_, err := controller.Signup(ctx, novapay.SignupRequest{
			Name:     "Ada",
			Email:    "ada@example.com",
			Password: "secret1",
		})
		done <- err
	}()

	<-digester.entered

	// a second submit while the first digest is pending is rejected
	_, err := controller.Login(ctx, novapay.LoginRequest{
		Email:    "ada@example.com",
		Password: "secret1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, novapay.ErrSubmissionInFlight)

	close(digester.release)
	require.NoError(t, <-done)

	// the slot is released once the first submission resolves
	identity, err := controller.Login(ctx, novapay.LoginRequest{
		Email:    "ada@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", identity.Name())
}

func TestControllerEmitsActivityEvents(t *testing.T) {
	ctx := context.Background()
	sink := &capturingSink{}
	controller := newTestController(novapay.NewMemoryStorage()).WithActivitySink(sink)

	_, err := controller.Signup(ctx, novapay.SignupRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	_, err = controller.Login(ctx, novapay.LoginRequest{
		Email:    "ada@example.com",
		Password: "nope-wrong",
	})
	require.Error(t, err)

	link, err := controller.RequestCheckout(ctx)
	require.NoError(t, err)

	controller.Logout(ctx)

	require.Len(t, sink.events, 4)
	assert.Equal(t, novapay.ActivityEventSignupSuccess, sink.events[0].EventType)
	assert.Equal(t, novapay.ActivityEventLoginFailure, sink.events[1].EventType)
	assert.Equal(t, novapay.ActivityEventCheckoutGranted, sink.events[2].EventType)
	assert.Equal(t, link, sink.events[2].Metadata["target"])
	assert.Equal(t, novapay.ActivityEventLogout, sink.events[3].EventType)

	for _, event := range sink.events {
		assert.False(t, event.OccurredAt.IsZero())
	}
}

func TestControllerClockInjection(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	storage := novapay.NewMemoryStorage()

	controller := newTestController(storage).
		WithClock(func() time.Time { return now })

	_, err := controller.Signup(ctx, novapay.SignupRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	accounts := novapay.NewCredentialStore(storage).ListAccounts(ctx)
	require.Len(t, accounts, 1)
	assert.Equal(t, now.UnixMilli(), accounts[0].CreatedAt)

	marker, ok := novapay.NewSessionManager(storage).GetSession(ctx)
	require.True(t, ok)
	assert.Equal(t, now.UnixMilli(), marker.EstablishedAt)
}

func TestOnChangeListener(t *testing.T) {
	ctx := context.Background()
	controller := newTestController(novapay.NewMemoryStorage())

	var transitions []bool
	controller.OnChange(func(_ novapay.Identity, authenticated bool) {
		transitions = append(transitions, authenticated)
	})

	_, err := controller.Signup(ctx, novapay.SignupRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	controller.Logout(ctx)

	assert.Equal(t, []bool{true, false}, transitions)
}
