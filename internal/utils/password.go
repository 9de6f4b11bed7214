package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/customer-auth/internal/model"
)

// SaltBytes is the amount of random data in a password salt (hex encoded
// when stored, so 32 characters).
const SaltBytes = 16

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// PasswordHasher salts and hashes user passwords.
//
// The stored hash is bcrypt(base64(HMAC-SHA256(salt, password))).  The HMAC
// binds the per-user salt into the digest and keeps the bcrypt input at 44
// bytes, well under its 72 byte limit, so long passwords are not silently
// truncated.
type PasswordHasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewPasswordHasher returns a hasher using the given bcrypt cost.  Zero
// selects DefaultCost; other values are clamped to bcrypt's allowed range.
func NewPasswordHasher(cost int) *PasswordHasher {
	switch {
	case cost == 0:
		cost = DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost returns the bcrypt work factor in use.
func (h *PasswordHasher) Cost() int { return h.cost }

// SetPassword generates a fresh salt, hashes plain with it and stores both on
// u, replacing any previous credentials.  It does not persist u.
func (h *PasswordHasher) SetPassword(u *model.User, plain string) error {
	salt, err := randomHex(SaltBytes)
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword(saltedDigest(salt, plain), h.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordSalt = salt
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword reports whether plain matches the credentials stored on u.
// Incomplete or corrupt credentials yield false.  Legacy records, where the
// salt is the bcrypt salt itself and the hash is bcrypt over the raw
// password, are verified as such.
func (h *PasswordHasher) VerifyPassword(u *model.User, plain string) bool {
	if u == nil || u.PasswordSalt == "" || u.PasswordHash == "" {
		return false
	}
	if IsLegacyCredential(u) {
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), saltedDigest(u.PasswordSalt, plain)) == nil
}

// legacySaltLen is the length of a modular-crypt bcrypt salt ("$2b$12$" plus
// 22 characters).
const legacySaltLen = 29

// IsLegacyCredential reports whether u carries an imported bcrypt salt/hash
// pair rather than one produced by SetPassword.  Such records should be
// rehashed with SetPassword after the next successful login.
func IsLegacyCredential(u *model.User) bool {
	return len(u.PasswordSalt) == legacySaltLen &&
		strings.HasPrefix(u.PasswordSalt, "$2") &&
		strings.HasPrefix(u.PasswordHash, u.PasswordSalt)
}

// IsStoredCredential reports whether u's hash and salt have a shape
// VerifyPassword can check: a SetPassword pair or a legacy bcrypt pair.
func IsStoredCredential(u *model.User) bool {
	if IsLegacyCredential(u) {
		return true
	}
	if _, err := hex.DecodeString(u.PasswordSalt); err != nil || len(u.PasswordSalt) != SaltBytes*2 {
		return false
	}
	_, err := bcrypt.Cost([]byte(u.PasswordHash))
	return err == nil
}

// VerifyDummy spends roughly the same time as VerifyPassword against a
// throwaway hash and always returns false.  Callers use it when no user
// matched so response timing does not reveal whether an account exists.
func (h *PasswordHasher) VerifyDummy(plain string) bool {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("customer-auth-dummy"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, saltedDigest("00", plain))
	return false
}

func saltedDigest(salt, plain string) []byte {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(plain))
	sum := mac.Sum(nil)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum)
	return out
}

// randomHex returns a hex string generated from n bytes of crypto/rand data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
