// Package custody orchestrates registration and login for custody
// wallets. Registration creates a keypair and stores the private key
// sealed under the account password; login verifies the password,
// unseals the key and returns it resealed under a one-time verification
// code delivered out-of-band, so neither the raw key nor the
// password-sealed ciphertext ever crosses the wire after creation.
package custody

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ethergate/ethergate/internal/chain"
	"github.com/ethergate/ethergate/internal/credential"
	"github.com/ethergate/ethergate/internal/keywrap"
	"github.com/ethergate/ethergate/internal/verification"
)

const minPasswordLen = 8

var (
	// ErrInvalidInput indicates a missing phone/password or a password
	// shorter than eight characters.
	ErrInvalidInput = errors.New("phone and a password of at least 8 characters are required")

	// ErrIdentityTaken indicates the phone number is already registered.
	ErrIdentityTaken = errors.New("phone number already registered")

	// ErrInvalidCredentials covers both an unknown phone number and a
	// wrong password. The two must stay indistinguishable to the client
	// so accounts cannot be enumerated.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCorruptCredential indicates the stored ciphertext would not
	// unseal under the verified password: a data-integrity fault, not a
	// user error.
	ErrCorruptCredential = errors.New("stored credential is corrupt")
)

// Service coordinates the credential store, chain key generation and the
// verification exchange. All collaborators are injected; the service
// holds no other state between requests.
type Service struct {
	creds  credential.Repository
	keys   chain.KeyGenerator
	codes  *verification.Exchange
	logger *slog.Logger
}

// NewService wires a custody service from its collaborators.
func NewService(creds credential.Repository, keys chain.KeyGenerator, codes *verification.Exchange, logger *slog.Logger) *Service {
	return &Service{creds: creds, keys: keys, codes: codes, logger: logger}
}

// RegisterInput carries the registration request fields.
type RegisterInput struct {
	Phone    string
	Password string
}

// RegisterOutput is returned once at wallet creation. PrivateKey is the
// raw key; this response is the user's only opportunity to record it.
type RegisterOutput struct {
	Address    string
	PrivateKey string
}

// Register creates a wallet for a new phone identity: hash the password,
// generate a keypair, seal the private key under the password and
// persist the credential. The duplicate pre-check keeps the common case
// cheap; the store's uniqueness constraint settles races.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	if in.Phone == "" || len(in.Password) < minPasswordLen {
		return RegisterOutput{}, ErrInvalidInput
	}

	if _, err := s.creds.FindByPhone(ctx, in.Phone); err == nil {
		return RegisterOutput{}, ErrIdentityTaken
	} else if !errors.Is(err, credential.ErrNotFound) {
		return RegisterOutput{}, fmt.Errorf("check existing credential: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegisterOutput{}, fmt.Errorf("hash password: %w", err)
	}

	wallet, err := s.keys.GenerateWallet()
	if err != nil {
		return RegisterOutput{}, fmt.Errorf("generate wallet: %w", err)
	}

	wrapped, err := keywrap.Seal(wallet.PrivateKey, in.Password)
	if err != nil {
		return RegisterOutput{}, fmt.Errorf("seal private key: %w", err)
	}

	cred := credential.Credential{
		ID:            uuid.NewString(),
		Phone:         in.Phone,
		PasswordHash:  hash,
		WalletAddress: wallet.Address,
		WrappedKey:    wrapped,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.creds.Insert(ctx, cred); err != nil {
		if errors.Is(err, credential.ErrPhoneTaken) {
			return RegisterOutput{}, ErrIdentityTaken
		}
		return RegisterOutput{}, fmt.Errorf("persist credential: %w", err)
	}

	return RegisterOutput{Address: wallet.Address, PrivateKey: wallet.PrivateKey}, nil
}

// LoginInput carries the login request fields.
type LoginInput struct {
	Phone    string
	Password string
}

// LoginOutput carries the wallet address and the private key sealed
// under the delivered verification code.
type LoginOutput struct {
	Address   string
	SealedKey string
}

// Login verifies the password, unseals the stored key, issues and
// delivers a verification code, and returns the key resealed under that
// code. Every failure aborts the remaining stages; nothing is retried.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	if in.Phone == "" || in.Password == "" {
		return LoginOutput{}, ErrInvalidInput
	}

	cred, err := s.creds.FindByPhone(ctx, in.Phone)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return LoginOutput{}, ErrInvalidCredentials
		}
		return LoginOutput{}, fmt.Errorf("look up credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(in.Password)); err != nil {
		return LoginOutput{}, ErrInvalidCredentials
	}

	privateKey, err := keywrap.Unseal(cred.WrappedKey, in.Password)
	if err != nil {
		// The password checked out against its hash, so the ciphertext
		// itself is bad. Log the specifics; the client sees a generic
		// failure.
		s.logger.Error("wrapped key does not unseal under verified password",
			"phone", cred.Phone, "credential_id", cred.ID, "error", err)
		return LoginOutput{}, ErrCorruptCredential
	}

	code, err := s.codes.IssueCode()
	if err != nil {
		return LoginOutput{}, fmt.Errorf("issue verification code: %w", err)
	}
	if err := s.codes.Deliver(ctx, cred.Phone, code); err != nil {
		return LoginOutput{}, err
	}

	sealed, err := keywrap.Seal(privateKey, code)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("seal key under verification code: %w", err)
	}

	return LoginOutput{Address: cred.WalletAddress, SealedKey: sealed}, nil
}
