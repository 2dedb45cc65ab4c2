package models

import "time"

// Availability status values
const (
	StatusAvailable    = "AVAILABLE"
	StatusNotAvailable = "NOT_AVAILABLE"
)

// Donor represents a registered blood donor
type Donor struct {
	ID                 int64      `json:"id" db:"donor_id"`
	Name               string     `json:"name" db:"name"`
	Email              string     `json:"email" db:"email"`
	Phone              string     `json:"phone" db:"phone"`
	BloodGroup         string     `json:"bloodGroup" db:"blood_group"`
	Area               string     `json:"area" db:"area"`
	City               string     `json:"city" db:"city"`
	Verified           bool       `json:"isVerified" db:"is_verified"`
	AvailabilityStatus string     `json:"availabilityStatus" db:"availability_status"`
	NotAvailableUntil  *time.Time `json:"notAvailableUntil,omitempty" db:"not_available_until"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
}

// DonorSearchRequest filters donors by any combination of blood group,
// city and availability. Empty fields are ignored.
type DonorSearchRequest struct {
	BloodGroup         string `json:"bloodGroup"`
	City               string `json:"city"`
	AvailabilityStatus string `json:"availabilityStatus"`
}

// UpdateDonorRequest carries the editable donor profile fields
type UpdateDonorRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	BloodGroup string `json:"bloodGroup"`
	Area       string `json:"area"`
	City       string `json:"city"`
}

// UpdateStatusRequest changes donor availability. MonthsUnavailable is
// only read when the status is NOT_AVAILABLE.
type UpdateStatusRequest struct {
	AvailabilityStatus string `json:"availabilityStatus"`
	MonthsUnavailable  *int   `json:"monthsUnavailable,omitempty"`
}

// ReportDonorRequest notifies a donor that they were reported as
// unavailable by someone else.
type ReportDonorRequest struct {
	ReporterName string `json:"reporterName"`
	Reason       string `json:"reason"`
}

// AddDonorRequest is the admin shortcut that creates a donor without
// the OTP verification flow.
type AddDonorRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BloodGroup string `json:"bloodGroup"`
	Area       string `json:"area"`
	City       string `json:"city"`
}
