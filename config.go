package novapay

// PaymentConfig is a plain-struct Config. The payment link wins; the
// Razorpay link is the fallback, matching the page's original wiring.
type PaymentConfig struct {
	PaymentLink  string
	RazorpayLink string
}

var _ Config = PaymentConfig{}

func (c PaymentConfig) GetPaymentLink() string {
	return c.PaymentLink
}

func (c PaymentConfig) GetRazorpayLink() string {
	return c.RazorpayLink
}
