package services

import (
	"context"
	"errors"
	"time"

	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/adapters/persistence/repositories"
	"relic-ledger/internal/core/domain"
	"relic-ledger/internal/pkg/validate"

	"gorm.io/gorm"
)

// BorrowService handles borrow ledger business logic
type BorrowService struct {
	borrowRepo   repositories.BorrowRepository
	artifactRepo repositories.ArtifactRepository
}

// NewBorrowService creates a new borrow service
func NewBorrowService(
	borrowRepo repositories.BorrowRepository,
	artifactRepo repositories.ArtifactRepository,
) *BorrowService {
	return &BorrowService{
		borrowRepo:   borrowRepo,
		artifactRepo: artifactRepo,
	}
}

// CreateBorrowInput represents create borrow input
type CreateBorrowInput struct {
	ArtifactID         uint       `json:"artifact_id" validate:"required"`
	BorrowerName       string     `json:"borrower_name" validate:"required,max=100"`
	BorrowerContact    string     `json:"borrower_contact" validate:"required,max=100"`
	BorrowPhotoURL     string     `json:"borrow_photo_url" validate:"required"`
	BorrowDate         time.Time  `json:"borrow_date"`
	ExpectedReturnDate *time.Time `json:"expected_return_date"`
	Notes              string     `json:"notes"`
}

// UpdateBorrowInput represents borrow update input. Status is deliberately
// absent: it only changes through the return workflow.
type UpdateBorrowInput struct {
	BorrowerName       *string    `json:"borrower_name" validate:"omitempty,max=100"`
	BorrowerContact    *string    `json:"borrower_contact" validate:"omitempty,max=100"`
	BorrowDate         *time.Time `json:"borrow_date"`
	ExpectedReturnDate *time.Time `json:"expected_return_date"`
	Notes              *string    `json:"notes"`
}

// ListBorrowsInput represents list filters
type ListBorrowsInput struct {
	Status     string
	ArtifactID *uint
	Offset     int
	Limit      int
}

// Create opens a loan. An artifact can have at most one open loan; the
// repository enforces that inside a locked transaction, so a second create
// while one is open fails with a conflict even under concurrency.
func (s *BorrowService) Create(ctx context.Context, input *CreateBorrowInput, operatorID uint) (*models.BorrowRecord, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	borrowDate := input.BorrowDate
	if borrowDate.IsZero() {
		borrowDate = time.Now()
	}
	if input.ExpectedReturnDate != nil && input.ExpectedReturnDate.Before(borrowDate) {
		return nil, domain.Validationf("expected return date is before borrow date")
	}

	record := &models.BorrowRecord{
		ArtifactID:         input.ArtifactID,
		BorrowerName:       input.BorrowerName,
		BorrowerContact:    input.BorrowerContact,
		BorrowPhotoURL:     input.BorrowPhotoURL,
		BorrowDate:         borrowDate,
		ExpectedReturnDate: input.ExpectedReturnDate,
		Status:             string(domain.BorrowStatusBorrowed),
		Notes:              input.Notes,
		OperatorID:         operatorID,
	}

	if err := s.borrowRepo.CreateOpeningLoan(ctx, record); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, record.ID)
}

// GetByID gets a borrow record by ID
func (s *BorrowService) GetByID(ctx context.Context, id uint) (*models.BorrowRecord, error) {
	record, err := s.borrowRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBorrowNotFound
		}
		return nil, err
	}
	return record, nil
}

// GetOpenByArtifactNo returns the active loan for an artifact, used when
// preparing a return.
func (s *BorrowService) GetOpenByArtifactNo(ctx context.Context, artifactNo string) (*models.BorrowRecord, error) {
	artifact, err := s.artifactRepo.GetByArtifactNo(ctx, artifactNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, err
	}

	record, err := s.borrowRepo.GetOpenByArtifactID(ctx, artifact.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBorrowNotFound
		}
		return nil, err
	}
	return record, nil
}

// Update edits loan details. Allowed only while the loan is open.
func (s *BorrowService) Update(ctx context.Context, id uint, input *UpdateBorrowInput) (*models.BorrowRecord, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	record, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !record.IsOpen() {
		return nil, domain.ErrBorrowNotOpen
	}

	if input.BorrowerName != nil {
		record.BorrowerName = *input.BorrowerName
	}
	if input.BorrowerContact != nil {
		record.BorrowerContact = *input.BorrowerContact
	}
	if input.BorrowDate != nil {
		record.BorrowDate = *input.BorrowDate
	}
	if input.ExpectedReturnDate != nil {
		record.ExpectedReturnDate = input.ExpectedReturnDate
	}
	if input.Notes != nil {
		record.Notes = *input.Notes
	}

	if err := s.borrowRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// Delete removes a loan record. Deleting an already-returned loan is
// destructive: the linked return record stays behind untouched.
func (s *BorrowService) Delete(ctx context.Context, id uint) error {
	record, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.borrowRepo.Delete(ctx, record.ID)
}

// List lists borrow records. The derived overdue status is accepted as a
// filter and translated into a date predicate.
func (s *BorrowService) List(ctx context.Context, input *ListBorrowsInput) ([]*models.BorrowRecord, int64, error) {
	filter := repositories.BorrowFilter{ArtifactID: input.ArtifactID}

	switch input.Status {
	case "":
	case string(domain.BorrowStatusOverdue):
		now := time.Now()
		filter.OverdueAt = &now
	case string(domain.BorrowStatusBorrowed), string(domain.BorrowStatusReturned):
		filter.Status = input.Status
	default:
		return nil, 0, domain.Validationf("unknown status %q", input.Status)
	}

	return s.borrowRepo.List(ctx, filter, input.Offset, input.Limit)
}
