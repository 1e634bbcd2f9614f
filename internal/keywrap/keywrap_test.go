package keywrap

import (
	"errors"
	"strings"
	"testing"
)

func TestSealUnsealRoundtrip(t *testing.T) {
	const secret = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

	sealed, err := Seal(secret, "correct horse battery")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if strings.Contains(sealed, secret) {
		t.Fatalf("ciphertext leaks plaintext")
	}

	opened, err := Unseal(sealed, "correct horse battery")
	if err != nil {
		t.Fatalf("unseal: %v", err)
	}
	if opened != secret {
		t.Fatalf("expected %q got %q", secret, opened)
	}
}

func TestUnsealWrongKey(t *testing.T) {
	sealed, err := Seal("private-key-material", "password-one")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	if _, err := Unseal(sealed, "password-two"); !errors.Is(err, ErrUnseal) {
		t.Fatalf("expected ErrUnseal, got %v", err)
	}
}

func TestUnsealMalformedCiphertext(t *testing.T) {
	cases := []string{
		"",
		"not-a-ciphertext",
		"aabb:ccdd",
		"zz:zz:zz",
		"aabb:ccdd:eeff:0011",
	}
	for _, c := range cases {
		if _, err := Unseal(c, "whatever"); !errors.Is(err, ErrUnseal) {
			t.Fatalf("ciphertext %q: expected ErrUnseal, got %v", c, err)
		}
	}
}

func TestSealNonDeterministic(t *testing.T) {
	first, err := Seal("same plaintext", "same key")
	if err != nil {
		t.Fatalf("first seal: %v", err)
	}
	second, err := Seal("same plaintext", "same key")
	if err != nil {
		t.Fatalf("second seal: %v", err)
	}
	if first == second {
		t.Fatalf("two seals of identical input produced identical ciphertexts")
	}
}

func TestSealRequiresInput(t *testing.T) {
	if _, err := Seal("", "key"); err == nil {
		t.Fatalf("expected error for empty plaintext")
	}
	if _, err := Seal("plaintext", ""); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
