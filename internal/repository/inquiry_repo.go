package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"modernc.org/sqlite"

	"educhain/internal/domain"
	"educhain/internal/metrics"
	apperrors "educhain/pkg/errors"
)

// SQLite extended result codes for uniqueness failures.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

const pgUniqueViolation = "23505"

// InquiryRepository persists inquiries. It is write-only: the application
// never reads, updates, or deletes stored rows.
type InquiryRepository struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// CreateTable ensures the inquiries table and its unique email index exist.
// Safe to call on every startup.
func (r *InquiryRepository) CreateTable(ctx context.Context) error {
	start := time.Now()
	err := r.db.WithContext(ctx).AutoMigrate(&domain.Inquiry{})
	metrics.RecordDBQuery("inquiry_migrate", time.Since(start), err)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStorage, "failed to create inquiries table", err)
	}
	return nil
}

// Insert stores inquiry in a single transaction and fills in its ID and
// Timestamp. A duplicate email yields a CONSTRAINT_VIOLATION error and
// leaves the table unchanged.
func (r *InquiryRepository) Insert(ctx context.Context, inquiry *domain.Inquiry) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Create(inquiry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("expected 1 row affected, got %d", res.RowsAffected)
		}
		return nil
	})
	metrics.RecordDBQuery("inquiry_insert", time.Since(start), err)

	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return apperrors.Wrap(apperrors.ErrCodeConstraint, "an inquiry with this email already exists", err)
	}
	return apperrors.Wrap(apperrors.ErrCodeStorage, "failed to save inquiry", err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return true
		}
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
