package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/blood-donor-services/common/email"
	apperrors "github.com/blood-donor-services/common/errors"
	"github.com/blood-donor-services/common/logger"
	"github.com/blood-donor-services/common/validator"
	"github.com/blood-donor-services/services/donor-lambda/models"
)

// DonorRepo abstracts donor persistence
type DonorRepo interface {
	Create(ctx context.Context, donor *models.Donor) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.Donor, error)
	FindByEmail(ctx context.Context, email string) (*models.Donor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context) ([]models.Donor, error)
	Search(ctx context.Context, req models.DonorSearchRequest) ([]models.Donor, error)
	Update(ctx context.Context, donor *models.Donor) error
	UpdateStatus(ctx context.Context, id int64, status string, notAvailableUntil *time.Time) error
	Delete(ctx context.Context, id int64) error
}

// ReportMailer delivers report notifications to donors
type ReportMailer interface {
	SendReportNotification(to, donorName, reporterName, reason string) error
}

// DonorUseCase handles donor profile management, search, availability
// and report notifications.
type DonorUseCase struct {
	repo   DonorRepo
	mailer ReportMailer
	log    *logger.Logger
}

// NewDonorUseCase wires the donor use case
func NewDonorUseCase(repo DonorRepo, mailer ReportMailer) *DonorUseCase {
	return &DonorUseCase{
		repo:   repo,
		mailer: mailer,
		log:    logger.Default().With("component", "donor-usecase"),
	}
}

// GetDonor returns a donor by id
func (uc *DonorUseCase) GetDonor(ctx context.Context, id int64) (*models.Donor, error) {
	donor, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if donor == nil {
		return nil, apperrors.NotFound("Donor")
	}
	return donor, nil
}

// GetAllDonors returns every donor, newest first
func (uc *DonorUseCase) GetAllDonors(ctx context.Context) ([]models.Donor, error) {
	donors, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return donors, nil
}

// SearchDonors filters donors by blood group, city and availability.
// Empty filters match everything.
func (uc *DonorUseCase) SearchDonors(ctx context.Context, req models.DonorSearchRequest) ([]models.Donor, error) {
	req.BloodGroup = strings.ToUpper(strings.TrimSpace(req.BloodGroup))
	req.City = strings.TrimSpace(req.City)
	req.AvailabilityStatus = strings.ToUpper(strings.TrimSpace(req.AvailabilityStatus))

	if req.BloodGroup != "" && !validator.IsValidBloodGroup(req.BloodGroup) {
		return nil, apperrors.ValidationError(validator.GetBloodGroupError(req.BloodGroup))
	}
	if req.AvailabilityStatus != "" &&
		req.AvailabilityStatus != models.StatusAvailable &&
		req.AvailabilityStatus != models.StatusNotAvailable {
		return nil, apperrors.ValidationError("Invalid availability status. Must be AVAILABLE or NOT_AVAILABLE")
	}

	donors, err := uc.repo.Search(ctx, req)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return donors, nil
}

// UpdateDonor saves the editable profile fields
func (uc *DonorUseCase) UpdateDonor(ctx context.Context, id int64, req models.UpdateDonorRequest) (*models.Donor, error) {
	donor, err := uc.GetDonor(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		if !validator.IsValidName(req.Name) {
			return nil, apperrors.ValidationError(validator.GetNameError(req.Name))
		}
		donor.Name = strings.TrimSpace(req.Name)
	}
	if req.Phone != "" {
		if !validator.IsValidPhone(req.Phone) {
			return nil, apperrors.ValidationError(validator.GetPhoneError(req.Phone))
		}
		donor.Phone = strings.TrimSpace(req.Phone)
	}
	if req.BloodGroup != "" {
		bg := strings.ToUpper(strings.TrimSpace(req.BloodGroup))
		if !validator.IsValidBloodGroup(bg) {
			return nil, apperrors.ValidationError(validator.GetBloodGroupError(bg))
		}
		donor.BloodGroup = bg
	}
	if req.Area != "" {
		donor.Area = strings.TrimSpace(req.Area)
	}
	if req.City != "" {
		donor.City = strings.TrimSpace(req.City)
	}

	if err := uc.repo.Update(ctx, donor); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return donor, nil
}

// UpdateDonorStatus changes availability. When the donor becomes
// NOT_AVAILABLE with a month count, notAvailableUntil is set that many
// months from today; becoming AVAILABLE always clears it.
func (uc *DonorUseCase) UpdateDonorStatus(ctx context.Context, id int64, req models.UpdateStatusRequest) (*models.Donor, error) {
	donor, err := uc.GetDonor(ctx, id)
	if err != nil {
		return nil, err
	}

	status := strings.ToUpper(strings.TrimSpace(req.AvailabilityStatus))
	if status != models.StatusAvailable && status != models.StatusNotAvailable {
		return nil, apperrors.ValidationError("Invalid availability status. Must be AVAILABLE or NOT_AVAILABLE")
	}

	var notAvailableUntil *time.Time
	if status == models.StatusNotAvailable && req.MonthsUnavailable != nil {
		if *req.MonthsUnavailable <= 0 {
			return nil, apperrors.ValidationError("monthsUnavailable must be positive")
		}
		until := time.Now().AddDate(0, *req.MonthsUnavailable, 0)
		notAvailableUntil = &until
	}

	if err := uc.repo.UpdateStatus(ctx, id, status, notAvailableUntil); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	donor.AvailabilityStatus = status
	donor.NotAvailableUntil = notAvailableUntil
	return donor, nil
}

// DeleteDonor removes a donor
func (uc *DonorUseCase) DeleteDonor(ctx context.Context, id int64) error {
	if _, err := uc.GetDonor(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperrors.DatabaseError(err)
	}
	uc.log.Info("Donor deleted: donorId=%d", id)
	return nil
}

// AdminAddDonor creates a donor directly, skipping OTP verification.
// Admin-created donors are marked verified.
func (uc *DonorUseCase) AdminAddDonor(ctx context.Context, req models.AddDonorRequest) (*models.Donor, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.BloodGroup = strings.ToUpper(strings.TrimSpace(req.BloodGroup))
	req.Area = strings.TrimSpace(req.Area)
	req.City = strings.TrimSpace(req.City)

	if !validator.IsValidName(req.Name) {
		return nil, apperrors.ValidationError(validator.GetNameError(req.Name))
	}
	if !validator.IsValidEmail(req.Email) {
		return nil, apperrors.ValidationError(validator.GetEmailError(req.Email))
	}
	if !validator.IsValidPhone(req.Phone) {
		return nil, apperrors.ValidationError(validator.GetPhoneError(req.Phone))
	}
	if !validator.IsValidBloodGroup(req.BloodGroup) {
		return nil, apperrors.ValidationError(validator.GetBloodGroupError(req.BloodGroup))
	}
	if msg := validator.GetRequiredError("area", req.Area); msg != "" {
		return nil, apperrors.ValidationError(msg)
	}
	if msg := validator.GetRequiredError("city", req.City); msg != "" {
		return nil, apperrors.ValidationError(msg)
	}

	exists, err := uc.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if exists {
		return nil, apperrors.DuplicateEmail()
	}

	donor := &models.Donor{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		BloodGroup:         req.BloodGroup,
		Area:               req.Area,
		City:               req.City,
		Verified:           true,
		AvailabilityStatus: models.StatusAvailable,
		CreatedAt:          time.Now(),
	}
	id, err := uc.repo.Create(ctx, donor)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	donor.ID = id
	return donor, nil
}

// ReportDonor emails a donor that someone reported them as unavailable.
// The donor record is not changed here; the status only moves when the
// donor or an admin acts on the report.
func (uc *DonorUseCase) ReportDonor(ctx context.Context, id int64, req models.ReportDonorRequest) error {
	donor, err := uc.GetDonor(ctx, id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(req.Reason) == "" {
		return apperrors.MissingField("reason")
	}

	if err := uc.mailer.SendReportNotification(donor.Email, donor.Name, req.ReporterName, req.Reason); err != nil {
		return apperrors.NotificationError(err)
	}
	uc.log.Info("Report notification sent: donorId=%d", id)
	return nil
}

// ensure EmailService satisfies ReportMailer
var _ ReportMailer = (*email.EmailService)(nil)
