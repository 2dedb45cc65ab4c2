package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blood-donor-services/common/db"
	"github.com/blood-donor-services/services/auth-lambda/models"
)

// OtpRepository persists one-time passcodes in MySQL.
//
// Two invariants are enforced at this layer:
//   - at most one live code per (email, purpose): Issue deletes prior
//     rows and inserts the new one inside a single transaction
//   - single use: Consume locks the row, checks expiry and flips
//     is_used inside a single transaction, so two concurrent attempts
//     with the same code cannot both succeed
type OtpRepository struct {
	db *sql.DB
}

// NewOtpRepository creates a repository on the shared connection pool
func NewOtpRepository() *OtpRepository {
	return &OtpRepository{db: db.GetDB()}
}

// NewOtpRepositoryWithDB creates a repository on an explicit connection
func NewOtpRepositoryWithDB(conn *sql.DB) *OtpRepository {
	return &OtpRepository{db: conn}
}

// Issue stores a fresh code for (email, purpose), invalidating any
// previously issued code for the same pair.
func (r *OtpRepository) Issue(ctx context.Context, email string, purpose models.OtpPurpose, code string, ttl time.Duration) error {
	return db.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM otp_verifications WHERE email = ? AND purpose = ?",
			email, purpose)
		if err != nil {
			return fmt.Errorf("failed to clear previous OTP: %w", err)
		}

		now := time.Now()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO otp_verifications (email, otp_code, purpose, created_at, expires_at, is_used)
			 VALUES (?, ?, ?, ?, ?, false)`,
			email, code, purpose, now, now.Add(ttl))
		if err != nil {
			return fmt.Errorf("failed to store OTP: %w", err)
		}
		return nil
	})
}

// Consume attempts to use a code. Returns true when a matching, unused,
// unexpired code exists; the code is marked used in the same
// transaction. Expired codes are rejected but left in place for the
// sweeper to remove.
func (r *OtpRepository) Consume(ctx context.Context, email, code string, purpose models.OtpPurpose) (bool, error) {
	var consumed bool
	err := db.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		var id int64
		var expiresAt time.Time
		err := tx.QueryRowContext(ctx,
			`SELECT id, expires_at FROM otp_verifications
			 WHERE email = ? AND otp_code = ? AND purpose = ? AND is_used = false
			 FOR UPDATE`,
			email, code, purpose).Scan(&id, &expiresAt)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up OTP: %w", err)
		}

		if time.Now().After(expiresAt) {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE otp_verifications SET is_used = true WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to mark OTP used: %w", err)
		}
		consumed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return consumed, nil
}

// SweepExpired deletes every code whose expiry is before now, used or
// not. Returns the number of rows removed.
func (r *OtpRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM otp_verifications WHERE expires_at < ?", now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired OTPs: %w", err)
	}
	return result.RowsAffected()
}
