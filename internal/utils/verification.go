package utils

import (
	"crypto/subtle"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/customer-auth/internal/model"
)

// DefaultCodeTTL is how long a password reset code stays usable when
// IssueCode receives a non-positive ttl.
const DefaultCodeTTL = time.Hour

// VerificationCodes manages the single-use reset code kept on a user
// record.  Neither method persists; callers save the user afterwards.
type VerificationCodes struct {
	clock Clock
}

// NewVerificationCodes returns a VerificationCodes using clock (SystemClock if nil).
func NewVerificationCodes(clock Clock) *VerificationCodes {
	if clock == nil {
		clock = SystemClock{}
	}
	return &VerificationCodes{clock: clock}
}

// IssueCode puts a fresh random code on u expiring ttl from now and returns
// it.  Any pending code is replaced and can no longer be used.
func (v *VerificationCodes) IssueCode(u *model.User, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	// UUIDv4: 122 random bits from crypto/rand.
	code := uuid.NewString()
	exp := v.clock.Now().Add(ttl)
	u.VerificationCode = &code
	u.VerificationCodeExpiry = &exp
	return code
}

// Check reports whether presented is the pending code on u and has not
// expired.  It never modifies u.
func (v *VerificationCodes) Check(u *model.User, presented string) bool {
	if !u.HasPendingReset() {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(*u.VerificationCode), []byte(presented)) != 1 {
		return false
	}
	return !v.clock.Now().After(*u.VerificationCodeExpiry)
}

// ConsumeCode clears the pending code on u and returns true when presented
// passes Check.  On failure u is left untouched so a correct retry still
// works until the code expires.
func (v *VerificationCodes) ConsumeCode(u *model.User, presented string) bool {
	if !v.Check(u, presented) {
		return false
	}
	u.VerificationCode = nil
	u.VerificationCodeExpiry = nil
	return true
}

// Now exposes the clock reading used for expiry decisions so persistence can
// apply the same instant in its conditional write.
func (v *VerificationCodes) Now() time.Time { return v.clock.Now() }
