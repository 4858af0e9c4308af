package services

import (
	"context"
	"errors"
	"log"
	"time"

	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/adapters/persistence/repositories"
	"relic-ledger/internal/core/domain"
	"relic-ledger/internal/pkg/validate"

	"gorm.io/gorm"
)

// ReturnService drives the return/verification workflow:
// Submitted -> AI-Evaluated -> Reviewed. Creation is all-or-nothing: the
// engine verdict must arrive before anything is written, and the return
// record plus the borrow status flip commit in one transaction.
type ReturnService struct {
	returnRepo repositories.ReturnRepository
	borrowRepo repositories.BorrowRepository
	engine     ComparisonEngine
}

// NewReturnService creates a new return service
func NewReturnService(
	returnRepo repositories.ReturnRepository,
	borrowRepo repositories.BorrowRepository,
	engine ComparisonEngine,
) *ReturnService {
	return &ReturnService{
		returnRepo: returnRepo,
		borrowRepo: borrowRepo,
		engine:     engine,
	}
}

// CreateReturnInput represents create return input
type CreateReturnInput struct {
	BorrowRecordID uint      `json:"borrow_record_id" validate:"required"`
	ReturnPhotoURL string    `json:"return_photo_url" validate:"required"`
	ReturnDate     time.Time `json:"return_date"`
	Notes          string    `json:"notes"`
}

// SetConclusionInput represents the appraiser review input
type SetConclusionInput struct {
	Conclusion string `json:"conclusion" validate:"required"`
	Notes      string `json:"notes"`
}

// ListReturnsInput represents list filters
type ListReturnsInput struct {
	Conclusion string
	ArtifactID *uint
	Offset     int
	Limit      int
}

// Create submits a returned item: the engine compares the loan-time photo
// with the after-photo, and only on a verdict does the record persist and
// the loan close.
func (s *ReturnService) Create(ctx context.Context, input *CreateReturnInput, operatorID uint) (*models.ReturnRecord, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	borrow, err := s.borrowRepo.GetByID(ctx, input.BorrowRecordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBorrowNotFound
		}
		return nil, err
	}

	if !borrow.IsOpen() {
		return nil, domain.ErrAlreadyReturned
	}

	result, err := s.engine.Compare(ctx, borrow.BorrowPhotoURL, input.ReturnPhotoURL)
	if err != nil {
		log.Printf("Comparison engine failed for borrow record %d: %v", borrow.ID, err)
		if errors.Is(err, domain.ErrEngineUnavailable) {
			return nil, err
		}
		return nil, domain.ErrEngineUnavailable
	}

	returnDate := input.ReturnDate
	if returnDate.IsZero() {
		returnDate = time.Now()
	}

	record := &models.ReturnRecord{
		BorrowRecordID:   borrow.ID,
		ReturnPhotoURL:   input.ReturnPhotoURL,
		ReturnDate:       returnDate,
		ComparisonResult: models.ComparisonResultJSON{ComparisonResult: *result},
		AIConclusion:     string(result.Conclusion),
		Notes:            input.Notes,
		OperatorID:       operatorID,
	}

	if err := s.returnRepo.CreateClosingLoan(ctx, record); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, record.ID)
}

// GetByID gets a return record by ID
func (s *ReturnService) GetByID(ctx context.Context, id uint) (*models.ReturnRecord, error) {
	record, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReturnNotFound
		}
		return nil, err
	}
	return record, nil
}

// SetConclusion records the human verdict. Appraiser or admin only.
// Re-invocation overwrites: last write wins, with reviewer identity and
// timestamp refreshed each call. The AI verdict is never touched.
func (s *ReturnService) SetConclusion(ctx context.Context, id uint, input *SetConclusionInput, reviewerID uint, reviewerRole domain.Role) (*models.ReturnRecord, error) {
	if !reviewerRole.CanReview() {
		return nil, domain.ErrForbidden
	}

	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	conclusion := domain.Conclusion(input.Conclusion)
	if !conclusion.IsValid() {
		return nil, domain.Validationf("unknown conclusion %q", input.Conclusion)
	}

	record, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	final := string(conclusion)
	record.FinalConclusion = &final
	record.ReviewedBy = &reviewerID
	record.ReviewedAt = &now
	if input.Notes != "" {
		record.Notes = input.Notes
	}

	if err := s.returnRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// Delete removes a return record and reverts the linked loan to borrowed,
// so the ledger never holds a closed loan without its closing return.
func (s *ReturnService) Delete(ctx context.Context, id uint) error {
	record, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.returnRepo.DeleteRevertingLoan(ctx, record)
}

// List lists return records
func (s *ReturnService) List(ctx context.Context, input *ListReturnsInput) ([]*models.ReturnRecord, int64, error) {
	if input.Conclusion != "" && !domain.Conclusion(input.Conclusion).IsValid() {
		return nil, 0, domain.Validationf("unknown conclusion %q", input.Conclusion)
	}

	filter := repositories.ReturnFilter{
		Conclusion: input.Conclusion,
		ArtifactID: input.ArtifactID,
	}
	return s.returnRepo.List(ctx, filter, input.Offset, input.Limit)
}
