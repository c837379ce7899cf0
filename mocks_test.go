package novapay_test

import (
	"context"

	novapay "github.com/jayxmukati/NovaPay"
	"github.com/stretchr/testify/mock"
)

// MockDigester implements novapay.PasswordDigester
type MockDigester struct {
	mock.Mock
}

func (m *MockDigester) Digest(ctx context.Context, password, email string) (string, error) {
	args := m.Called(ctx, password, email)
	return args.String(0), args.Error(1)
}

// blockingDigester holds every Digest call until released, so tests can
// observe the in-flight window.
type blockingDigester struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingDigester() *blockingDigester {
	return &blockingDigester{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (d *blockingDigester) Digest(ctx context.Context, password, email string) (string, error) {
	d.entered <- struct{}{}
	<-d.release
	return novapay.SHA256Digester{}.Digest(ctx, password, email)
}

type capturingSink struct {
	events []novapay.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt novapay.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}

// brokenStorage fails every operation, standing in for an unreadable medium.
type brokenStorage struct {
	err error
}

func (s brokenStorage) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, s.err
}

func (s brokenStorage) Set(context.Context, string, []byte) error {
	return s.err
}

func (s brokenStorage) Delete(context.Context, string) error {
	return s.err
}
