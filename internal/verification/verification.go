// Package verification issues one-time numeric codes and delivers them to
// the account's phone number through an out-of-band channel. The code acts
// as a transport key for the login response: it is never persisted or
// checked against a store, so it proves control of the delivery channel
// for a single round-trip only.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// ErrDeliveryFailed indicates the messaging collaborator rejected the send
// or was unreachable. Login must not proceed past a failed delivery.
var ErrDeliveryFailed = errors.New("verification delivery failed")

// Sender delivers a verification code to a recipient phone number.
type Sender interface {
	SendVerification(ctx context.Context, phone, code string) error
}

// Exchange couples code issuance with delivery.
type Exchange struct {
	sender Sender
}

// NewExchange builds a verification exchange around the given sender.
func NewExchange(sender Sender) *Exchange {
	return &Exchange{sender: sender}
}

// IssueCode draws a uniformly random 6-digit code from a cryptographically
// secure source.
func (e *Exchange) IssueCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("draw verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// Deliver sends the code to the recipient. Any sender error is reported as
// ErrDeliveryFailed; the exchange never retries.
func (e *Exchange) Deliver(ctx context.Context, recipient, code string) error {
	if err := e.sender.SendVerification(ctx, recipient, code); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}
