package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryRepositoryInsertAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	cred := Credential{
		ID:            uuid.NewString(),
		Phone:         "+15551234567",
		PasswordHash:  []byte("hash"),
		WalletAddress: "0xabc",
		WrappedKey:    "salt:nonce:ct",
		CreatedAt:     time.Now().UTC(),
	}
	if err := repo.Insert(ctx, cred); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.FindByPhone(ctx, cred.Phone)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.WalletAddress != cred.WalletAddress || got.WrappedKey != cred.WrappedKey {
		t.Fatalf("unexpected credential %+v", got)
	}
}

func TestMemoryRepositoryDuplicatePhone(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	cred := Credential{ID: uuid.NewString(), Phone: "+15550000001"}
	if err := repo.Insert(ctx, cred); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cred.ID = uuid.NewString()
	if err := repo.Insert(ctx, cred); !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
}

func TestMemoryRepositoryNotFound(t *testing.T) {
	repo := NewMemoryRepository()
	if _, err := repo.FindByPhone(context.Background(), "+15559999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
