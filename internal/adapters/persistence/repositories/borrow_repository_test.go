package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/core/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openingLoan(artifactID uint) *models.BorrowRecord {
	return &models.BorrowRecord{
		ArtifactID:      artifactID,
		BorrowerName:    "City Museum",
		BorrowerContact: "curator@example.com",
		BorrowPhotoURL:  "/uploads/borrow/before.jpg",
		BorrowDate:      time.Now(),
		Status:          string(domain.BorrowStatusBorrowed),
		OperatorID:      1,
	}
}

// Opening a loan locks the artifact row and checks for an existing open
// loan inside the same transaction, so two concurrent creates for one
// artifact cannot both pass the check.
func TestBorrowCreateOpeningLoan(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBorrowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `artifacts`") + ".*" + regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "artifact_no"}).AddRow(7, "REL-007"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `borrow_records`")).
		WithArgs(7, "borrowed").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `borrow_records`")).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	record := openingLoan(7)
	require.NoError(t, repo.CreateOpeningLoan(context.Background(), record))
	assert.Equal(t, uint(11), record.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowCreateOpeningLoan_OpenLoanExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBorrowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `artifacts`") + ".*" + regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "artifact_no"}).AddRow(7, "REL-007"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `borrow_records`")).
		WithArgs(7, "borrowed").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CreateOpeningLoan(context.Background(), openingLoan(7))
	assert.ErrorIs(t, err, domain.ErrBorrowOpenExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowCreateOpeningLoan_ArtifactMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBorrowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `artifacts`") + ".*" + regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.CreateOpeningLoan(context.Background(), openingLoan(404))
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
