package models

import "time"

// OtpPurpose identifies what an issued code may be consumed for.
// A code issued for one purpose never satisfies another.
type OtpPurpose string

const (
	PurposeRegistration       OtpPurpose = "REGISTRATION"
	PurposeReportConfirmation OtpPurpose = "REPORT_CONFIRMATION"
	PurposeStatusUpdate       OtpPurpose = "STATUS_UPDATE"
)

// OtpRecord represents a one-time passcode row.
// At most one unconsumed, unexpired record is authoritative per
// (email, purpose) pair; issuing a new code deletes prior rows first.
type OtpRecord struct {
	ID        int64      `json:"-" db:"id"`
	Email     string     `json:"email" db:"email"`
	Code      string     `json:"-" db:"otp_code"`
	Purpose   OtpPurpose `json:"purpose" db:"purpose"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
	Used      bool       `json:"used" db:"is_used"`
}

// AdminLoginRequest represents the admin login body
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// OtpLoginRequest represents the OTP-based donor login body
type OtpLoginRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

// RegistrationRequest represents the donor registration body, used by
// both the initiate and complete steps.
type RegistrationRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BloodGroup string `json:"bloodGroup"`
	Area       string `json:"area"`
	City       string `json:"city"`
}

// LoginResponse is the bearer token envelope returned by every login
// and completed registration.
type LoginResponse struct {
	AccessToken       string `json:"accessToken"`
	TokenType         string `json:"tokenType"`
	UserID            int64  `json:"userId"`
	SubjectName       string `json:"subjectName"`
	SubjectIdentifier string `json:"subjectIdentifier"`
	Role              string `json:"role"`
}
