package repositories

import (
	"context"

	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// returnRepository implements ReturnRepository interface
type returnRepository struct {
	db *gorm.DB
}

// NewReturnRepository creates a new return repository
func NewReturnRepository(db *gorm.DB) ReturnRepository {
	return &returnRepository{db: db}
}

// CreateClosingLoan creates the return record and flips the linked borrow
// record to returned in one transaction. The borrow row is locked FOR
// UPDATE so concurrent returns against the same loan serialize; the loser
// re-reads status=returned and fails, never producing a second record.
// The unique index on borrow_record_id backs this up at the schema level.
func (r *returnRepository) CreateClosingLoan(ctx context.Context, record *models.ReturnRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var borrow models.BorrowRecord
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&borrow, record.BorrowRecordID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrBorrowNotFound
			}
			return err
		}

		if borrow.Status != string(domain.BorrowStatusBorrowed) {
			return domain.ErrAlreadyReturned
		}

		if err := tx.Create(record).Error; err != nil {
			return err
		}

		return tx.Model(&models.BorrowRecord{}).
			Where("id = ?", borrow.ID).
			Update("status", string(domain.BorrowStatusReturned)).Error
	})
}

// GetByID gets a return record by ID with its borrow record and artifact
func (r *returnRepository) GetByID(ctx context.Context, id uint) (*models.ReturnRecord, error) {
	var record models.ReturnRecord
	err := r.db.WithContext(ctx).
		Preload("BorrowRecord").
		Preload("BorrowRecord.Artifact").
		First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByBorrowRecordID gets the return record closing a given loan
func (r *returnRepository) GetByBorrowRecordID(ctx context.Context, borrowRecordID uint) (*models.ReturnRecord, error) {
	var record models.ReturnRecord
	err := r.db.WithContext(ctx).
		Where("borrow_record_id = ?", borrowRecordID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Update updates a return record
func (r *returnRepository) Update(ctx context.Context, record *models.ReturnRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// DeleteRevertingLoan deletes the return record and reverts the linked
// borrow record to borrowed in one transaction, so the loan can be closed
// again by a fresh return. The delete is hard: a soft-deleted row would
// keep borrow_record_id occupied in the unique index and block that
// fresh return with a duplicate-key error.
func (r *returnRepository) DeleteRevertingLoan(ctx context.Context, record *models.ReturnRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&models.ReturnRecord{}, record.ID).Error; err != nil {
			return err
		}

		return tx.Model(&models.BorrowRecord{}).
			Where("id = ?", record.BorrowRecordID).
			Update("status", string(domain.BorrowStatusBorrowed)).Error
	})
}

// List lists return records with filters and pagination. The conclusion
// filter matches the effective verdict: the human conclusion when a review
// exists, the AI conclusion otherwise, so unreviewed records stay reachable.
func (r *returnRepository) List(ctx context.Context, filter ReturnFilter, offset, limit int) ([]*models.ReturnRecord, int64, error) {
	var records []*models.ReturnRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ReturnRecord{})
	if filter.Conclusion != "" {
		query = query.Where("COALESCE(final_conclusion, ai_conclusion) = ?", filter.Conclusion)
	}
	if filter.ArtifactID != nil {
		query = query.
			Joins("JOIN borrow_records ON borrow_records.id = return_records.borrow_record_id").
			Where("borrow_records.artifact_id = ?", *filter.ArtifactID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("BorrowRecord").
		Preload("BorrowRecord.Artifact").
		Order("return_records.return_date DESC, return_records.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// CountByConclusion counts return records by effective conclusion
func (r *returnRepository) CountByConclusion(ctx context.Context, conclusion string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReturnRecord{}).
		Where("COALESCE(final_conclusion, ai_conclusion) = ?", conclusion).
		Count(&count).Error
	return count, err
}
