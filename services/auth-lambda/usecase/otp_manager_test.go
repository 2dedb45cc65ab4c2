package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blood-donor-services/common/config"
	apperrors "github.com/blood-donor-services/common/errors"
	"github.com/blood-donor-services/services/auth-lambda/models"
)

// memOtpStore mimics the MySQL-backed store: issue replaces any prior
// code for the pair, consume succeeds at most once and respects expiry.
type memOtpStore struct {
	mu      sync.Mutex
	records map[string]*models.OtpRecord
	now     func() time.Time

	issueErr   error
	consumeErr error
	issueCalls int
}

func newMemOtpStore() *memOtpStore {
	return &memOtpStore{
		records: make(map[string]*models.OtpRecord),
		now:     time.Now,
	}
}

func storeKey(email string, purpose models.OtpPurpose) string {
	return email + "|" + string(purpose)
}

func (s *memOtpStore) Issue(ctx context.Context, email string, purpose models.OtpPurpose, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issueCalls++
	if s.issueErr != nil {
		return s.issueErr
	}
	now := s.now()
	s.records[storeKey(email, purpose)] = &models.OtpRecord{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	return nil
}

func (s *memOtpStore) Consume(ctx context.Context, email, code string, purpose models.OtpPurpose) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumeErr != nil {
		return false, s.consumeErr
	}
	rec, ok := s.records[storeKey(email, purpose)]
	if !ok || rec.Used || rec.Code != code {
		return false, nil
	}
	if s.now().After(rec.ExpiresAt) {
		return false, nil
	}
	rec.Used = true
	return true, nil
}

// lastCode returns the live code for a pair, for driving verifications
func (s *memOtpStore) lastCode(email string, purpose models.OtpPurpose) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[storeKey(email, purpose)]; ok {
		return rec.Code
	}
	return ""
}

// fakeMailer records sent codes and can be told to fail
type fakeMailer struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (m *fakeMailer) SendOTPEmail(to, otp, purpose string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, otp)
	return nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		AdminUsername:        "admin",
		AdminPassword:        "secret",
		JWTSecret:            "test-secret",
		JWTExpirationSeconds: 3600,
		OTPLength:            6,
		OTPExpirationMinutes: 10,
	}
}

// ============================================================
// Test: Code generation
// ============================================================

func TestGenerateRandomOTP(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		code, err := generateRandomOTP(length)
		if err != nil {
			t.Fatalf("generateRandomOTP(%d) failed: %v", length, err)
		}
		if len(code) != length {
			t.Errorf("len = %d, want %d", len(code), length)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Errorf("code %q contains non-digit %q", code, c)
			}
		}
	}
}

// ============================================================
// Test: Request and verify flow
// ============================================================

func TestRequestCodeStoresAndSends(t *testing.T) {
	store := newMemOtpStore()
	mailer := &fakeMailer{}
	m := NewOTPManager(store, mailer, testConfig())

	if err := m.RequestCode(context.Background(), "donor@example.com", models.PurposeRegistration); err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}

	code := store.lastCode("donor@example.com", models.PurposeRegistration)
	if len(code) != 6 {
		t.Fatalf("stored code = %q, want 6 digits", code)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != code {
		t.Errorf("mailed codes = %v, want [%s]", mailer.sent, code)
	}
}

func TestVerifyCodeSucceedsExactlyOnce(t *testing.T) {
	store := newMemOtpStore()
	m := NewOTPManager(store, &fakeMailer{}, testConfig())
	ctx := context.Background()

	if err := m.RequestCode(ctx, "donor@example.com", models.PurposeRegistration); err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}
	code := store.lastCode("donor@example.com", models.PurposeRegistration)

	ok, err := m.VerifyCode(ctx, "donor@example.com", code, models.PurposeRegistration)
	if err != nil || !ok {
		t.Fatalf("first verify = (%v, %v), want (true, nil)", ok, err)
	}

	// Replay must fail
	ok, err = m.VerifyCode(ctx, "donor@example.com", code, models.PurposeRegistration)
	if err != nil {
		t.Fatalf("second verify errored: %v", err)
	}
	if ok {
		t.Error("second verify succeeded, codes must be single use")
	}
}

func TestVerifyCodeRejectsWrongPurpose(t *testing.T) {
	store := newMemOtpStore()
	m := NewOTPManager(store, &fakeMailer{}, testConfig())
	ctx := context.Background()

	if err := m.RequestCode(ctx, "donor@example.com", models.PurposeRegistration); err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}
	code := store.lastCode("donor@example.com", models.PurposeRegistration)

	ok, err := m.VerifyCode(ctx, "donor@example.com", code, models.PurposeStatusUpdate)
	if err != nil {
		t.Fatalf("verify errored: %v", err)
	}
	if ok {
		t.Error("code issued for REGISTRATION verified for STATUS_UPDATE")
	}
}

func TestReissueInvalidatesPreviousCode(t *testing.T) {
	store := newMemOtpStore()
	m := NewOTPManager(store, &fakeMailer{}, testConfig())
	ctx := context.Background()

	if err := m.RequestCode(ctx, "donor@example.com", models.PurposeRegistration); err != nil {
		t.Fatalf("first RequestCode failed: %v", err)
	}
	first := store.lastCode("donor@example.com", models.PurposeRegistration)

	if err := m.RequestCode(ctx, "donor@example.com", models.PurposeRegistration); err != nil {
		t.Fatalf("second RequestCode failed: %v", err)
	}
	second := store.lastCode("donor@example.com", models.PurposeRegistration)

	if first == second {
		t.Skip("random codes collided, cannot distinguish reissue")
	}

	ok, err := m.VerifyCode(ctx, "donor@example.com", first, models.PurposeRegistration)
	if err != nil {
		t.Fatalf("verify errored: %v", err)
	}
	if ok {
		t.Error("superseded code verified, reissue must invalidate prior codes")
	}

	ok, err = m.VerifyCode(ctx, "donor@example.com", second, models.PurposeRegistration)
	if err != nil || !ok {
		t.Errorf("latest code verify = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestVerifyCodeRejectsExpired(t *testing.T) {
	store := newMemOtpStore()
	m := NewOTPManager(store, &fakeMailer{}, testConfig())
	ctx := context.Background()

	if err := m.RequestCode(ctx, "donor@example.com", models.PurposeRegistration); err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}
	code := store.lastCode("donor@example.com", models.PurposeRegistration)

	// Move the store clock past the expiry
	store.now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	ok, err := m.VerifyCode(ctx, "donor@example.com", code, models.PurposeRegistration)
	if err != nil {
		t.Fatalf("verify errored: %v", err)
	}
	if ok {
		t.Error("expired code verified")
	}
}

func TestVerifyCodeRejectsEmptyCode(t *testing.T) {
	m := NewOTPManager(newMemOtpStore(), &fakeMailer{}, testConfig())

	ok, err := m.VerifyCode(context.Background(), "donor@example.com", "", models.PurposeRegistration)
	if err != nil {
		t.Fatalf("verify errored: %v", err)
	}
	if ok {
		t.Error("empty code verified")
	}
}

// ============================================================
// Test: Delivery failure handling
// ============================================================

func TestRequestCodeFailOpenKeepsCode(t *testing.T) {
	store := newMemOtpStore()
	mailer := &fakeMailer{sendErr: errors.New("smtp down")}
	cfg := testConfig()
	cfg.OTPFailClosed = false
	m := NewOTPManager(store, mailer, cfg)

	if err := m.RequestCode(context.Background(), "donor@example.com", models.PurposeRegistration); err != nil {
		t.Fatalf("fail-open RequestCode errored: %v", err)
	}
	if store.lastCode("donor@example.com", models.PurposeRegistration) == "" {
		t.Error("stored code missing after fail-open delivery failure")
	}
}

func TestRequestCodeFailClosedReturnsNotificationError(t *testing.T) {
	store := newMemOtpStore()
	mailer := &fakeMailer{sendErr: errors.New("smtp down")}
	cfg := testConfig()
	cfg.OTPFailClosed = true
	m := NewOTPManager(store, mailer, cfg)

	err := m.RequestCode(context.Background(), "donor@example.com", models.PurposeRegistration)
	if err == nil {
		t.Fatal("fail-closed RequestCode succeeded, want notification error")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeNotification {
		t.Errorf("error = %v, want code %s", err, apperrors.ErrCodeNotification)
	}
}

func TestRequestCodeStoreFailure(t *testing.T) {
	store := newMemOtpStore()
	store.issueErr = errors.New("db down")
	m := NewOTPManager(store, &fakeMailer{}, testConfig())

	err := m.RequestCode(context.Background(), "donor@example.com", models.PurposeRegistration)
	if err == nil {
		t.Fatal("expected error when store fails")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeDatabase {
		t.Errorf("error = %v, want code %s", err, apperrors.ErrCodeDatabase)
	}
}
