package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/blood-donor-services/services/auth-lambda/models"
)

// ============================================================
// Test: Issue deletes prior codes before inserting, in one tx
// ============================================================

func TestIssueReplacesPreviousCode(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer conn.Close()
	repo := NewOtpRepositoryWithDB(conn)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM otp_verifications WHERE email = ? AND purpose = ?")).
		WithArgs("donor@example.com", models.PurposeRegistration).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO otp_verifications")).
		WithArgs("donor@example.com", "123456", models.PurposeRegistration, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = repo.Issue(context.Background(), "donor@example.com", models.PurposeRegistration, "123456", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestIssueRollsBackOnInsertFailure(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer conn.Close()
	repo := NewOtpRepositoryWithDB(conn)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM otp_verifications")).
		WithArgs("donor@example.com", models.PurposeRegistration).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO otp_verifications")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err = repo.Issue(context.Background(), "donor@example.com", models.PurposeRegistration, "123456", 10*time.Minute)
	if err == nil {
		t.Fatal("expected error when insert fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ============================================================
// Test: Consume locks the row and flips is_used
// ============================================================

func TestConsumeMarksCodeUsed(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer conn.Close()
	repo := NewOtpRepositoryWithDB(conn)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, expires_at FROM otp_verifications")).
		WithArgs("donor@example.com", "123456", models.PurposeRegistration).
		WillReturnRows(sqlmock.NewRows([]string{"id", "expires_at"}).
			AddRow(9, time.Now().Add(5*time.Minute)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE otp_verifications SET is_used = true WHERE id = ?")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.Consume(context.Background(), "donor@example.com", "123456", models.PurposeRegistration)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if !ok {
		t.Error("Consume = false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConsumeUnknownCode(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer conn.Close()
	repo := NewOtpRepositoryWithDB(conn)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, expires_at FROM otp_verifications")).
		WithArgs("donor@example.com", "999999", models.PurposeRegistration).
		WillReturnRows(sqlmock.NewRows([]string{"id", "expires_at"}))
	mock.ExpectCommit()

	ok, err := repo.Consume(context.Background(), "donor@example.com", "999999", models.PurposeRegistration)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if ok {
		t.Error("unknown code consumed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConsumeExpiredCodeIsRejectedNotDeleted(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer conn.Close()
	repo := NewOtpRepositoryWithDB(conn)

	// The row exists but expired; no UPDATE and no DELETE may follow
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, expires_at FROM otp_verifications")).
		WithArgs("donor@example.com", "123456", models.PurposeRegistration).
		WillReturnRows(sqlmock.NewRows([]string{"id", "expires_at"}).
			AddRow(9, time.Now().Add(-time.Minute)))
	mock.ExpectCommit()

	ok, err := repo.Consume(context.Background(), "donor@example.com", "123456", models.PurposeRegistration)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if ok {
		t.Error("expired code consumed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ============================================================
// Test: Expired sweep
// ============================================================

func TestSweepExpired(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer conn.Close()
	repo := NewOtpRepositoryWithDB(conn)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM otp_verifications WHERE expires_at < ?")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.SweepExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
