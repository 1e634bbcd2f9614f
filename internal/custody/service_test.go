package custody

import (
	"context"
	"errors"
	"testing"

	"github.com/ethergate/ethergate/internal/chain"
	"github.com/ethergate/ethergate/internal/credential"
	"github.com/ethergate/ethergate/internal/keywrap"
	"github.com/ethergate/ethergate/internal/logging"
	"github.com/ethergate/ethergate/internal/verification"
)

type fakeKeyGenerator struct {
	calls int
}

func (g *fakeKeyGenerator) GenerateWallet() (chain.Wallet, error) {
	g.calls++
	return chain.Wallet{
		Address:    "0x7F8C1e2D3B4A5968778695A4b3C2D1E0f9A8B7C6",
		PrivateKey: "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
	}, nil
}

type captureSender struct {
	phone string
	code  string
	err   error
}

func (s *captureSender) SendVerification(_ context.Context, phone, code string) error {
	s.phone = phone
	s.code = code
	return s.err
}

func newTestService(sender verification.Sender) (*Service, *fakeKeyGenerator) {
	keys := &fakeKeyGenerator{}
	svc := NewService(credential.NewMemoryRepository(), keys, verification.NewExchange(sender), logging.Discard())
	return svc, keys
}

func TestRegisterPasswordBoundary(t *testing.T) {
	svc, _ := newTestService(&captureSender{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Phone: "+15551230001", Password: "seven77"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("7-char password: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Phone: "+15551230001", Password: "eight888"}); err != nil {
		t.Fatalf("8-char password: %v", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _ := newTestService(&captureSender{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Phone: "", Password: "longenough1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Phone: "+15551230002", Password: ""}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	svc, _ := newTestService(&captureSender{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Phone: "+15551230003", Password: "longenough1"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Phone: "+15551230003", Password: "other-password"}); !errors.Is(err, ErrIdentityTaken) {
		t.Fatalf("expected ErrIdentityTaken, got %v", err)
	}
}

func TestLoginWrongPasswordAndUnknownPhoneIndistinguishable(t *testing.T) {
	svc, _ := newTestService(&captureSender{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Phone: "+15551230004", Password: "longenough1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPwErr := svc.Login(ctx, LoginInput{Phone: "+15551230004", Password: "wrong-password"})
	_, unknownErr := svc.Login(ctx, LoginInput{Phone: "+15559999999", Password: "longenough1"})

	if !errors.Is(wrongPwErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPwErr)
	}
	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown phone: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if wrongPwErr.Error() != unknownErr.Error() {
		t.Fatalf("error text differs between wrong password (%q) and unknown phone (%q)", wrongPwErr, unknownErr)
	}
}

func TestRegisterThenLoginRoundtrip(t *testing.T) {
	sender := &captureSender{}
	svc, _ := newTestService(sender)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Phone: "+15551234567", Password: "longenough1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	out, err := svc.Login(ctx, LoginInput{Phone: "+15551234567", Password: "longenough1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if out.Address != reg.Address {
		t.Fatalf("login address %q differs from registration address %q", out.Address, reg.Address)
	}
	if sender.phone != "+15551234567" {
		t.Fatalf("code delivered to %q", sender.phone)
	}
	if out.SealedKey == reg.PrivateKey {
		t.Fatalf("login returned the raw private key")
	}

	// The ciphertext must open with the delivered code and nothing else.
	unsealed, err := keywrap.Unseal(out.SealedKey, sender.code)
	if err != nil {
		t.Fatalf("unseal with delivered code: %v", err)
	}
	if unsealed != reg.PrivateKey {
		t.Fatalf("unsealed key does not match registration key")
	}
	if _, err := keywrap.Unseal(out.SealedKey, "longenough1"); !errors.Is(err, keywrap.ErrUnseal) {
		t.Fatalf("sealed key opened under the account password")
	}
}

func TestLoginDeliveryFailure(t *testing.T) {
	sender := &captureSender{err: errors.New("gateway unreachable")}
	svc, _ := newTestService(sender)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Phone: "+15551230005", Password: "longenough1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	out, err := svc.Login(ctx, LoginInput{Phone: "+15551230005", Password: "longenough1"})
	if !errors.Is(err, verification.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
	if out.SealedKey != "" || out.Address != "" {
		t.Fatalf("wrapped key returned despite delivery failure: %+v", out)
	}
}

func TestLoginCorruptCredential(t *testing.T) {
	repo := credential.NewMemoryRepository()
	keys := &fakeKeyGenerator{}
	svc := NewService(repo, keys, verification.NewExchange(&captureSender{}), logging.Discard())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Phone: "+15551230006", Password: "longenough1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Corrupt the stored row by re-inserting under a different phone with
	// a mangled ciphertext, then log into that identity.
	cred, err := repo.FindByPhone(ctx, "+15551230006")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	cred.Phone = "+15551230007"
	cred.WrappedKey = "aa:bb:cc"
	if err := repo.Insert(ctx, cred); err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}

	if _, err := svc.Login(ctx, LoginInput{Phone: "+15551230007", Password: "longenough1"}); !errors.Is(err, ErrCorruptCredential) {
		t.Fatalf("expected ErrCorruptCredential, got %v", err)
	}
}
