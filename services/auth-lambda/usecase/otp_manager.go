package usecase

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/blood-donor-services/common/config"
	apperrors "github.com/blood-donor-services/common/errors"
	"github.com/blood-donor-services/common/logger"
	"github.com/blood-donor-services/services/auth-lambda/models"
)

// OtpStore abstracts the passcode persistence layer
type OtpStore interface {
	Issue(ctx context.Context, email string, purpose models.OtpPurpose, code string, ttl time.Duration) error
	Consume(ctx context.Context, email, code string, purpose models.OtpPurpose) (bool, error)
}

// OtpMailer delivers passcodes to donors
type OtpMailer interface {
	SendOTPEmail(to, otp, purpose string) error
}

// OTPManager generates, stores and verifies one-time passcodes.
// Codes are stored before the email goes out, so a delivery failure in
// fail-open mode leaves a valid code behind.
type OTPManager struct {
	store      OtpStore
	mailer     OtpMailer
	codeLength int
	ttl        time.Duration
	failClosed bool
	log        *logger.Logger
}

// NewOTPManager wires an OTP manager from config
func NewOTPManager(store OtpStore, mailer OtpMailer, cfg *config.AppConfig) *OTPManager {
	return &OTPManager{
		store:      store,
		mailer:     mailer,
		codeLength: cfg.OTPLength,
		ttl:        cfg.OTPTTL(),
		failClosed: cfg.OTPFailClosed,
		log:        logger.Default().With("component", "otp-manager"),
	}
}

// RequestCode issues a fresh code for (email, purpose) and emails it.
// Any previously issued code for the pair is invalidated first. When
// delivery fails the behavior depends on the fail-closed setting:
// closed returns a notification error, open logs and succeeds with the
// stored code still valid.
func (m *OTPManager) RequestCode(ctx context.Context, email string, purpose models.OtpPurpose) error {
	code, err := generateRandomOTP(m.codeLength)
	if err != nil {
		return apperrors.Internal("failed to generate OTP").WithCause(err)
	}

	if err := m.store.Issue(ctx, email, purpose, code, m.ttl); err != nil {
		return apperrors.DatabaseError(err)
	}

	if err := m.mailer.SendOTPEmail(email, code, string(purpose)); err != nil {
		if m.failClosed {
			return apperrors.NotificationError(err)
		}
		m.log.WithError(err).Warn("OTP email delivery failed, stored code remains valid: email=%s purpose=%s", email, purpose)
	}
	return nil
}

// VerifyCode consumes a code. Returns true exactly once per issued
// code; expired, already-used, reissued-over and unknown codes all
// return false without error.
func (m *OTPManager) VerifyCode(ctx context.Context, email, code string, purpose models.OtpPurpose) (bool, error) {
	if code == "" {
		return false, nil
	}
	ok, err := m.store.Consume(ctx, email, code, purpose)
	if err != nil {
		return false, apperrors.DatabaseError(err)
	}
	return ok, nil
}

// generateRandomOTP builds a numeric code using crypto/rand, one digit
// at a time so every position is uniformly distributed.
func generateRandomOTP(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
