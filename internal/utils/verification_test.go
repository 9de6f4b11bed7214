package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/customer-auth/internal/model"
)

func TestIssueCode_SetsCodeAndExpiry(t *testing.T) {
	clock := NewManualClock(epoch)
	codes := NewVerificationCodes(clock)
	u := &model.User{}

	code := codes.IssueCode(u, 0)

	_, err := uuid.Parse(code)
	require.NoError(t, err)
	require.True(t, u.HasPendingReset())
	assert.Equal(t, code, *u.VerificationCode)
	assert.Equal(t, epoch.Add(DefaultCodeTTL), *u.VerificationCodeExpiry)
}

func TestConsumeCode_SingleUse(t *testing.T) {
	codes := NewVerificationCodes(NewManualClock(epoch))
	u := &model.User{}
	code := codes.IssueCode(u, time.Hour)

	assert.True(t, codes.ConsumeCode(u, code))
	assert.Nil(t, u.VerificationCode)
	assert.Nil(t, u.VerificationCodeExpiry)

	assert.False(t, codes.ConsumeCode(u, code))
}

func TestConsumeCode_FailureLeavesStateUntouched(t *testing.T) {
	codes := NewVerificationCodes(NewManualClock(epoch))
	u := &model.User{}
	code := codes.IssueCode(u, time.Hour)
	exp := *u.VerificationCodeExpiry

	for _, wrong := range []string{"", "invalid", code[:len(code)-1], code + " "} {
		assert.False(t, codes.ConsumeCode(u, wrong), wrong)
		require.True(t, u.HasPendingReset())
		assert.Equal(t, code, *u.VerificationCode)
		assert.Equal(t, exp, *u.VerificationCodeExpiry)
	}

	assert.True(t, codes.ConsumeCode(u, code))
}

func TestConsumeCode_CaseSensitive(t *testing.T) {
	codes := NewVerificationCodes(NewManualClock(epoch))
	code := "AbC-123"
	exp := epoch.Add(time.Hour)
	u := &model.User{VerificationCode: &code, VerificationCodeExpiry: &exp}

	assert.False(t, codes.ConsumeCode(u, "abc-123"))
	assert.True(t, codes.ConsumeCode(u, "AbC-123"))
}

func TestConsumeCode_Expiry(t *testing.T) {
	clock := NewManualClock(epoch)
	codes := NewVerificationCodes(clock)
	u := &model.User{}
	code := codes.IssueCode(u, time.Hour)

	clock.Advance(time.Hour)
	assert.True(t, codes.Check(u, code), "code is valid up to and including its expiry")

	clock.Advance(time.Minute)
	assert.False(t, codes.ConsumeCode(u, code))
	assert.True(t, u.HasPendingReset())
}

func TestIssueCode_SupersedesPrevious(t *testing.T) {
	codes := NewVerificationCodes(NewManualClock(epoch))
	u := &model.User{}

	a := codes.IssueCode(u, time.Hour)
	b := codes.IssueCode(u, time.Hour)
	require.NotEqual(t, a, b)

	assert.False(t, codes.ConsumeCode(u, a))
	assert.True(t, codes.ConsumeCode(u, b))
}

func TestConsumeCode_NoPendingCode(t *testing.T) {
	codes := NewVerificationCodes(nil)
	assert.False(t, codes.ConsumeCode(&model.User{}, ""))
	assert.False(t, codes.ConsumeCode(&model.User{}, "anything"))
}
