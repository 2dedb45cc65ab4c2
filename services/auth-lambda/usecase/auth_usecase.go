package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blood-donor-services/common/config"
	"github.com/blood-donor-services/common/email"
	apperrors "github.com/blood-donor-services/common/errors"
	"github.com/blood-donor-services/common/jwt"
	"github.com/blood-donor-services/common/logger"
	"github.com/blood-donor-services/common/pdf"
	"github.com/blood-donor-services/common/qrcode"
	"github.com/blood-donor-services/common/validator"
	"github.com/blood-donor-services/services/auth-lambda/models"
	donormodels "github.com/blood-donor-services/services/donor-lambda/models"
)

// DonorStore is the slice of the donor repository the auth flow needs
type DonorStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*donormodels.Donor, error)
	Create(ctx context.Context, donor *donormodels.Donor) (int64, error)
}

// AuthUseCase orchestrates logins and the two-step donor registration.
//
// Registration runs as initiate (validate, reject duplicates, send OTP)
// followed by complete (consume OTP, create the donor, hand out a
// token). Admin login is a plain comparison against configured
// credentials; there is no admin table.
type AuthUseCase struct {
	donors   DonorStore
	otp      *OTPManager
	tokens   *jwt.TokenService
	emailSvc *email.EmailService
	cfg      *config.AppConfig
	log      *logger.Logger
}

// NewAuthUseCase wires the auth use case
func NewAuthUseCase(donors DonorStore, otp *OTPManager, tokens *jwt.TokenService, emailSvc *email.EmailService, cfg *config.AppConfig) *AuthUseCase {
	return &AuthUseCase{
		donors:   donors,
		otp:      otp,
		tokens:   tokens,
		emailSvc: emailSvc,
		cfg:      cfg,
		log:      logger.Default().With("component", "auth-usecase"),
	}
}

// AdminLogin checks the static admin credentials and issues an ADMIN
// token. The admin has no donor row, so userId is 0.
func (uc *AuthUseCase) AdminLogin(req models.AdminLoginRequest) (*models.LoginResponse, error) {
	if uc.cfg.AdminPassword == "" {
		return nil, apperrors.ConfigError("admin credentials are not configured")
	}
	if req.Username != uc.cfg.AdminUsername || req.Password != uc.cfg.AdminPassword {
		return nil, apperrors.InvalidCredentials()
	}

	token, err := uc.tokens.GenerateToken(req.Username, "ADMIN", 0)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		AccessToken:       token,
		TokenType:         "Bearer",
		UserID:            0,
		SubjectName:       "Administrator",
		SubjectIdentifier: req.Username,
		Role:              "ADMIN",
	}, nil
}

// InitiateRegistration validates the profile, rejects duplicate emails
// before any code is issued, and sends a registration OTP.
func (uc *AuthUseCase) InitiateRegistration(ctx context.Context, req models.RegistrationRequest) error {
	normalizeRegistration(&req)
	if err := validateRegistration(req); err != nil {
		return err
	}

	exists, err := uc.donors.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if exists {
		return apperrors.DuplicateEmail()
	}

	return uc.otp.RequestCode(ctx, req.Email, models.PurposeRegistration)
}

// CompleteRegistration consumes the registration OTP and creates the
// donor. The donor card email is best effort; a delivery failure never
// fails the registration.
func (uc *AuthUseCase) CompleteRegistration(ctx context.Context, req models.RegistrationRequest, otpCode string) (*donormodels.Donor, *models.LoginResponse, error) {
	normalizeRegistration(&req)
	if err := validateRegistration(req); err != nil {
		return nil, nil, err
	}

	ok, err := uc.otp.VerifyCode(ctx, req.Email, otpCode, models.PurposeRegistration)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, apperrors.InvalidOrExpiredOTP()
	}

	// The email could have been registered between initiate and complete
	exists, err := uc.donors.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, apperrors.DatabaseError(err)
	}
	if exists {
		return nil, nil, apperrors.DuplicateEmail()
	}

	donor := &donormodels.Donor{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		BloodGroup:         req.BloodGroup,
		Area:               req.Area,
		City:               req.City,
		Verified:           true,
		AvailabilityStatus: donormodels.StatusAvailable,
		CreatedAt:          time.Now(),
	}
	id, err := uc.donors.Create(ctx, donor)
	if err != nil {
		return nil, nil, apperrors.DatabaseError(err)
	}
	donor.ID = id

	token, err := uc.tokens.GenerateToken(donor.Email, "DONOR", donor.ID)
	if err != nil {
		return nil, nil, err
	}

	uc.sendDonorCard(donor)

	return donor, &models.LoginResponse{
		AccessToken:       token,
		TokenType:         "Bearer",
		UserID:            donor.ID,
		SubjectName:       donor.Name,
		SubjectIdentifier: donor.Email,
		Role:              "DONOR",
	}, nil
}

// RequestLoginCode issues a login OTP for an existing donor
func (uc *AuthUseCase) RequestLoginCode(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if !validator.IsValidEmail(emailAddr) {
		return apperrors.ValidationError(validator.GetEmailError(emailAddr))
	}

	donor, err := uc.donors.FindByEmail(ctx, emailAddr)
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if donor == nil {
		return apperrors.NotFound("Donor")
	}

	return uc.otp.RequestCode(ctx, emailAddr, models.PurposeRegistration)
}

// DonorOTPLogin consumes a login OTP and issues a DONOR token
func (uc *AuthUseCase) DonorOTPLogin(ctx context.Context, req models.OtpLoginRequest) (*models.LoginResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	donor, err := uc.donors.FindByEmail(ctx, emailAddr)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if donor == nil {
		return nil, apperrors.NotFound("Donor")
	}

	ok, err := uc.otp.VerifyCode(ctx, emailAddr, req.Otp, models.PurposeRegistration)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.InvalidOrExpiredOTP()
	}

	token, err := uc.tokens.GenerateToken(donor.Email, "DONOR", donor.ID)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		AccessToken:       token,
		TokenType:         "Bearer",
		UserID:            donor.ID,
		SubjectName:       donor.Name,
		SubjectIdentifier: donor.Email,
		Role:              "DONOR",
	}, nil
}

// sendDonorCard emails the welcome mail with the donor card PDF.
// Failures are logged and swallowed; the donor is already registered.
func (uc *AuthUseCase) sendDonorCard(donor *donormodels.Donor) {
	qrPayload := fmt.Sprintf("DONOR:%d|%s|%s", donor.ID, donor.BloodGroup, donor.Email)
	qrPng, err := qrcode.GenerateQRCodePngBytes(qrPayload, 256)
	if err != nil {
		uc.log.WithError(err).Warn("failed to generate donor QR code: donorId=%d", donor.ID)
		qrPng = nil
	}

	// Inline copy of the QR for the email body; the PDF embeds the PNG
	qrDataURI, err := qrcode.GenerateQRCodeBase64(qrPayload, 140)
	if err != nil {
		qrDataURI = ""
	}

	cardPdf, err := pdf.GenerateDonorCardPDF(pdf.DonorCardData{
		DonorID:        donor.ID,
		Name:           donor.Name,
		Email:          donor.Email,
		Phone:          donor.Phone,
		BloodGroup:     donor.BloodGroup,
		Area:           donor.Area,
		City:           donor.City,
		RegisteredAt:   donor.CreatedAt,
		QRCodePngBytes: qrPng,
	})
	if err != nil {
		uc.log.WithError(err).Warn("failed to render donor card PDF: donorId=%d", donor.ID)
		return
	}

	err = uc.emailSvc.SendDonorCardEmail(email.DonorCardEmailData{
		DonorEmail:    donor.Email,
		DonorName:     donor.Name,
		BloodGroup:    donor.BloodGroup,
		City:          donor.City,
		QRCodeBase64:  qrDataURI,
		PDFAttachment: cardPdf,
		PDFFilename:   fmt.Sprintf("donor-card-%d.pdf", donor.ID),
	})
	if err != nil {
		uc.log.WithError(err).Warn("failed to send donor card email: donorId=%d", donor.ID)
	}
}

func normalizeRegistration(req *models.RegistrationRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.BloodGroup = strings.ToUpper(strings.TrimSpace(req.BloodGroup))
	req.Area = strings.TrimSpace(req.Area)
	req.City = strings.TrimSpace(req.City)
}

func validateRegistration(req models.RegistrationRequest) error {
	if req.Name == "" {
		return apperrors.MissingField("name")
	}
	if !validator.IsValidName(req.Name) {
		return apperrors.ValidationError(validator.GetNameError(req.Name))
	}
	if req.Email == "" {
		return apperrors.MissingField("email")
	}
	if !validator.IsValidEmail(req.Email) {
		return apperrors.ValidationError(validator.GetEmailError(req.Email))
	}
	if req.Phone == "" {
		return apperrors.MissingField("phone")
	}
	if !validator.IsValidPhone(req.Phone) {
		return apperrors.ValidationError(validator.GetPhoneError(req.Phone))
	}
	if req.BloodGroup == "" {
		return apperrors.MissingField("bloodGroup")
	}
	if !validator.IsValidBloodGroup(req.BloodGroup) {
		return apperrors.ValidationError(validator.GetBloodGroupError(req.BloodGroup))
	}
	if req.Area == "" {
		return apperrors.MissingField("area")
	}
	if req.City == "" {
		return apperrors.MissingField("city")
	}
	return nil
}
