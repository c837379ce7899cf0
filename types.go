package novapay

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of the currently authenticated account
type Identity interface {
	Name() string
	Email() string
}

// Config holds checkout options
type Config interface {
	GetPaymentLink() string
	GetRazorpayLink() string
}

// Storage is a string-keyed blob store, the persistence medium for both
// the account collection and the session marker. Absent keys report
// ok=false rather than an error.
type Storage interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// PasswordDigester produces the stored password digest. Digest must be
// deterministic: verification is re-digesting the attempt and comparing.
type PasswordDigester interface {
	Digest(ctx context.Context, password, email string) (string, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] NOVAPAY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] NOVAPAY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] NOVAPAY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] NOVAPAY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
