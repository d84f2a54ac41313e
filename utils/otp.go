package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"

	"tribeconnect/config"
	"tribeconnect/models"
)

const (
	OTPLength         = 6
	OTPExpiry         = 15 * time.Minute
	MaxOTPAttempts    = 3
	OTPResendCooldown = 1 * time.Minute
)

func GenerateOTP() (string, error) {
	const digits = "0123456789"
	otp := make([]byte, OTPLength)

	for i := range otp {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		otp[i] = digits[num.Int64()]
	}

	return string(otp), nil
}

func GenerateSecureToken() (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return hex.EncodeToString(token), nil
}

func SaveOTP(userID uint, otp string) error {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return err
	}

	now := time.Now()
	user.OTP = otp
	user.OTPExpiresAt = now.Add(OTPExpiry)
	user.OTPAttempts = 0
	user.OTPLastSentAt = &now

	return config.DB.Save(&user).Error
}

func VerifyOTP(userID uint, otp string) (bool, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return false, err
	}

	if user.OTP == "" || time.Now().After(user.OTPExpiresAt) {
		return false, nil
	}
	if user.OTPAttempts >= MaxOTPAttempts {
		return false, nil
	}

	if user.OTP != otp {
		user.OTPAttempts++
		if err := config.DB.Save(&user).Error; err != nil {
			return false, err
		}
		return false, nil
	}

	// Clear OTP state on success
	user.OTP = ""
	user.OTPExpiresAt = time.Time{}
	user.OTPAttempts = 0
	if err := config.DB.Save(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}

func CanResendOTP(userID uint) (bool, time.Duration, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return false, 0, err
	}

	if user.OTPLastSentAt == nil {
		return true, 0, nil
	}

	remaining := time.Until(user.OTPLastSentAt.Add(OTPResendCooldown))
	if remaining <= 0 {
		return true, 0, nil
	}

	return false, remaining, nil
}
