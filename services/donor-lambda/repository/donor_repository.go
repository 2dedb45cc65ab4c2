package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blood-donor-services/common/db"
	"github.com/blood-donor-services/services/donor-lambda/models"
)

const donorColumns = "donor_id, name, email, phone, blood_group, area, city, is_verified, availability_status, not_available_until, created_at"

// DonorRepository handles donor data access
type DonorRepository struct {
	db *sql.DB
}

// NewDonorRepository creates a repository on the shared connection pool
func NewDonorRepository() *DonorRepository {
	return &DonorRepository{db: db.GetDB()}
}

// NewDonorRepositoryWithDB creates a repository on an explicit connection
func NewDonorRepositoryWithDB(conn *sql.DB) *DonorRepository {
	return &DonorRepository{db: conn}
}

// Create inserts a donor and returns the generated id
func (r *DonorRepository) Create(ctx context.Context, donor *models.Donor) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO donors (name, email, phone, blood_group, area, city, is_verified, availability_status, not_available_until, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		donor.Name, donor.Email, donor.Phone, donor.BloodGroup, donor.Area, donor.City,
		donor.Verified, donor.AvailabilityStatus, donor.NotAvailableUntil, donor.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create donor: %w", err)
	}
	return result.LastInsertId()
}

// FindByID returns a donor by id, or nil when none exists
func (r *DonorRepository) FindByID(ctx context.Context, id int64) (*models.Donor, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+donorColumns+" FROM donors WHERE donor_id = ?", id)
	return scanDonor(row)
}

// FindByEmail returns a donor by email, or nil when none exists
func (r *DonorRepository) FindByEmail(ctx context.Context, email string) (*models.Donor, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+donorColumns+" FROM donors WHERE email = ?", email)
	return scanDonor(row)
}

// ExistsByEmail reports whether a donor with the email exists
func (r *DonorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM donors WHERE email = ?", email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check donor email: %w", err)
	}
	return count > 0, nil
}

// FindAll returns every donor, newest first
func (r *DonorRepository) FindAll(ctx context.Context) ([]models.Donor, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+donorColumns+" FROM donors ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	defer rows.Close()
	return scanDonors(rows)
}

// Search filters donors by the non-empty subset of blood group, city and
// availability status. The query branches on which filters are set so
// each combination stays an index-friendly equality match.
func (r *DonorRepository) Search(ctx context.Context, req models.DonorSearchRequest) ([]models.Donor, error) {
	base := "SELECT " + donorColumns + " FROM donors WHERE "
	var (
		query string
		args  []interface{}
	)

	switch {
	case req.BloodGroup != "" && req.City != "":
		query = base + "blood_group = ? AND city = ?"
		args = []interface{}{req.BloodGroup, req.City}
	case req.BloodGroup != "":
		query = base + "blood_group = ?"
		args = []interface{}{req.BloodGroup}
	case req.City != "":
		query = base + "city = ?"
		args = []interface{}{req.City}
	default:
		query = base + "1 = 1"
	}

	if req.AvailabilityStatus != "" {
		query += " AND availability_status = ?"
		args = append(args, req.AvailabilityStatus)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search donors: %w", err)
	}
	defer rows.Close()
	return scanDonors(rows)
}

// Update saves the editable profile fields of a donor
func (r *DonorRepository) Update(ctx context.Context, donor *models.Donor) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE donors SET name = ?, phone = ?, blood_group = ?, area = ?, city = ?
		 WHERE donor_id = ?`,
		donor.Name, donor.Phone, donor.BloodGroup, donor.Area, donor.City, donor.ID)
	if err != nil {
		return fmt.Errorf("failed to update donor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus changes availability. notAvailableUntil is nil when the
// donor becomes AVAILABLE.
func (r *DonorRepository) UpdateStatus(ctx context.Context, id int64, status string, notAvailableUntil *time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE donors SET availability_status = ?, not_available_until = ? WHERE donor_id = ?",
		status, notAvailableUntil, id)
	if err != nil {
		return fmt.Errorf("failed to update donor status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a donor row
func (r *DonorRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM donors WHERE donor_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete donor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanDonor(row *sql.Row) (*models.Donor, error) {
	var d models.Donor
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.BloodGroup, &d.Area, &d.City,
		&d.Verified, &d.AvailabilityStatus, &d.NotAvailableUntil, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan donor: %w", err)
	}
	return &d, nil
}

func scanDonors(rows *sql.Rows) ([]models.Donor, error) {
	donors := []models.Donor{}
	for rows.Next() {
		var d models.Donor
		err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.BloodGroup, &d.Area, &d.City,
			&d.Verified, &d.AvailabilityStatus, &d.NotAvailableUntil, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donor: %w", err)
		}
		donors = append(donors, d)
	}
	return donors, rows.Err()
}
