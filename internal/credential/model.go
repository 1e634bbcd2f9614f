package credential

import "time"

// Credential is the durable record binding a phone number to its password
// hash and custody wallet material. The wrapped key is the wallet private
// key sealed under the password that hashes to PasswordHash; the two are
// written together at registration and never updated independently.
type Credential struct {
	ID            string
	Phone         string
	PasswordHash  []byte
	WalletAddress string
	WrappedKey    string
	CreatedAt     time.Time
}
