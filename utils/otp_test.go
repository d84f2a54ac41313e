package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribeconnect/config"
)

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, otp, OTPLength)
		for _, c := range otp {
			assert.True(t, c >= '0' && c <= '9', "OTP must be digits only, got %q", otp)
		}
		seen[otp] = struct{}{}
	}
	// 20 draws from a million values should not all collide
	assert.Greater(t, len(seen), 1)
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken()
	require.NoError(t, err)
	b, err := GenerateSecureToken()
	require.NoError(t, err)

	assert.Len(t, a, 64) // 32 bytes hex encoded
	assert.NotEqual(t, a, b)
}

func TestInviteLink(t *testing.T) {
	orig := config.AppConfig.AppURL
	config.AppConfig.AppURL = "https://app.example.com"
	defer func() { config.AppConfig.AppURL = orig }()

	assert.Equal(t,
		"https://app.example.com/join-circle?token=abc123",
		InviteLink("abc123", ""))

	// An explicit origin wins over the configured app URL
	assert.Equal(t,
		"https://other.example.com/join-circle?token=abc123",
		InviteLink("abc123", "https://other.example.com"))
}
