package repositories

import (
	"context"
	"time"

	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// borrowRepository implements BorrowRepository interface
type borrowRepository struct {
	db *gorm.DB
}

// NewBorrowRepository creates a new borrow repository
func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

// CreateOpeningLoan inserts a new loan inside a transaction. The artifact
// row is locked for update so two concurrent creates for the same artifact
// serialize, then the open-loan check runs against the locked state.
func (r *borrowRepository) CreateOpeningLoan(ctx context.Context, record *models.BorrowRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var artifact models.Artifact
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&artifact, record.ArtifactID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrArtifactNotFound
			}
			return err
		}

		var open int64
		if err := tx.Model(&models.BorrowRecord{}).
			Where("artifact_id = ?", record.ArtifactID).
			Where("status = ?", string(domain.BorrowStatusBorrowed)).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrBorrowOpenExists
		}

		return tx.Create(record).Error
	})
}

// GetByID gets a borrow record by ID with its artifact
func (r *borrowRepository) GetByID(ctx context.Context, id uint) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	err := r.db.WithContext(ctx).
		Preload("Artifact").
		First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetOpenByArtifactID gets the active (not returned) loan for an artifact
func (r *borrowRepository) GetOpenByArtifactID(ctx context.Context, artifactID uint) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	err := r.db.WithContext(ctx).
		Preload("Artifact").
		Where("artifact_id = ?", artifactID).
		Where("status = ?", string(domain.BorrowStatusBorrowed)).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Update updates a borrow record
func (r *borrowRepository) Update(ctx context.Context, record *models.BorrowRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Delete soft deletes a borrow record
func (r *borrowRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.BorrowRecord{}, id).Error
}

// List lists borrow records with filters and pagination
func (r *borrowRepository) List(ctx context.Context, filter BorrowFilter, offset, limit int) ([]*models.BorrowRecord, int64, error) {
	var records []*models.BorrowRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&models.BorrowRecord{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ArtifactID != nil {
		query = query.Where("artifact_id = ?", *filter.ArtifactID)
	}
	if filter.OverdueAt != nil {
		query = query.
			Where("status = ?", string(domain.BorrowStatusBorrowed)).
			Where("expected_return_date IS NOT NULL").
			Where("expected_return_date < ?", *filter.OverdueAt)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Artifact").
		Order("borrow_date DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// CountOverdue counts open loans past their expected return date
func (r *borrowRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("status = ?", string(domain.BorrowStatusBorrowed)).
		Where("expected_return_date IS NOT NULL").
		Where("expected_return_date < ?", now).
		Count(&count).Error
	return count, err
}
