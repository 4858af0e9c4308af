package services

import (
	"context"
	"testing"
	"time"

	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBorrowFixture() (*BorrowService, *fakeArtifactRepo, *fakeBorrowRepo) {
	artifactRepo := newFakeArtifactRepo()
	borrowRepo := newFakeBorrowRepo(artifactRepo)
	return NewBorrowService(borrowRepo, artifactRepo), artifactRepo, borrowRepo
}

func seedArtifact(artifactRepo *fakeArtifactRepo) *models.Artifact {
	artifact := &models.Artifact{
		ArtifactNo: "REL-002",
		Name:       "Bronze Censer",
		Category:   "bronze",
		ImageURL:   "/uploads/artifacts/rel-002.jpg",
	}
	artifactRepo.Create(context.Background(), artifact)
	return artifact
}

func TestBorrowCreate_OpensLoan(t *testing.T) {
	svc, artifactRepo, _ := newBorrowFixture()
	artifact := seedArtifact(artifactRepo)

	record, err := svc.Create(context.Background(), &CreateBorrowInput{
		ArtifactID:      artifact.ID,
		BorrowerName:    "Provincial Gallery",
		BorrowerContact: "loans@example.com",
		BorrowPhotoURL:  "/uploads/borrow/b1.jpg",
	}, 4)
	require.NoError(t, err)

	assert.Equal(t, string(domain.BorrowStatusBorrowed), record.Status)
	assert.False(t, record.BorrowDate.IsZero(), "borrow date defaults to now")
	assert.Equal(t, uint(4), record.OperatorID)
}

func TestBorrowCreate_SecondOpenLoanRejected(t *testing.T) {
	svc, artifactRepo, _ := newBorrowFixture()
	artifact := seedArtifact(artifactRepo)

	input := &CreateBorrowInput{
		ArtifactID:      artifact.ID,
		BorrowerName:    "Provincial Gallery",
		BorrowerContact: "loans@example.com",
		BorrowPhotoURL:  "/uploads/borrow/b1.jpg",
	}
	_, err := svc.Create(context.Background(), input, 4)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input, 4)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestBorrowCreate_UnknownArtifact(t *testing.T) {
	svc, _, _ := newBorrowFixture()

	_, err := svc.Create(context.Background(), &CreateBorrowInput{
		ArtifactID:      42,
		BorrowerName:    "Provincial Gallery",
		BorrowerContact: "loans@example.com",
		BorrowPhotoURL:  "/uploads/borrow/b1.jpg",
	}, 4)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBorrowCreate_ExpectedReturnBeforeBorrowDate(t *testing.T) {
	svc, artifactRepo, _ := newBorrowFixture()
	artifact := seedArtifact(artifactRepo)

	borrowDate := time.Now()
	expected := borrowDate.AddDate(0, 0, -3)
	_, err := svc.Create(context.Background(), &CreateBorrowInput{
		ArtifactID:         artifact.ID,
		BorrowerName:       "Provincial Gallery",
		BorrowerContact:    "loans@example.com",
		BorrowPhotoURL:     "/uploads/borrow/b1.jpg",
		BorrowDate:         borrowDate,
		ExpectedReturnDate: &expected,
	}, 4)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBorrowUpdate_ClosedLoanRejected(t *testing.T) {
	svc, artifactRepo, borrowRepo := newBorrowFixture()
	artifact := seedArtifact(artifactRepo)

	record, err := svc.Create(context.Background(), &CreateBorrowInput{
		ArtifactID:      artifact.ID,
		BorrowerName:    "Provincial Gallery",
		BorrowerContact: "loans@example.com",
		BorrowPhotoURL:  "/uploads/borrow/b1.jpg",
	}, 4)
	require.NoError(t, err)

	borrowRepo.records[record.ID].Status = string(domain.BorrowStatusReturned)

	name := "Renamed Borrower"
	_, err = svc.Update(context.Background(), record.ID, &UpdateBorrowInput{BorrowerName: &name})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestBorrowGetOpenByArtifactNo(t *testing.T) {
	svc, artifactRepo, _ := newBorrowFixture()
	artifact := seedArtifact(artifactRepo)

	created, err := svc.Create(context.Background(), &CreateBorrowInput{
		ArtifactID:      artifact.ID,
		BorrowerName:    "Provincial Gallery",
		BorrowerContact: "loans@example.com",
		BorrowPhotoURL:  "/uploads/borrow/b1.jpg",
	}, 4)
	require.NoError(t, err)

	found, err := svc.GetOpenByArtifactNo(context.Background(), artifact.ArtifactNo)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetOpenByArtifactNo(context.Background(), "NO-SUCH")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBorrowList_UnknownStatusRejected(t *testing.T) {
	svc, _, _ := newBorrowFixture()

	_, _, err := svc.List(context.Background(), &ListBorrowsInput{Status: "misplaced"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBorrowOverdueIsDerived(t *testing.T) {
	past := time.Now().AddDate(0, 0, -2)
	record := &models.BorrowRecord{
		Status:             string(domain.BorrowStatusBorrowed),
		ExpectedReturnDate: &past,
	}

	assert.True(t, record.IsOverdue(time.Now()))
	assert.Equal(t, string(domain.BorrowStatusBorrowed), record.Status,
		"stored status never flips to overdue")
	assert.Equal(t, string(domain.BorrowStatusOverdue), record.ToResponse().Status)

	record.Status = string(domain.BorrowStatusReturned)
	assert.False(t, record.IsOverdue(time.Now()), "closed loans are never overdue")
}
