package services

import (
	"context"
	"testing"

	"relic-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReturnFixture() (*ReturnService, *fakeArtifactRepo, *fakeBorrowRepo, *fakeReturnRepo, *fakeEngine) {
	artifactRepo := newFakeArtifactRepo()
	borrowRepo := newFakeBorrowRepo(artifactRepo)
	returnRepo := newFakeReturnRepo(borrowRepo)
	engine := &fakeEngine{result: authenticResult()}
	svc := NewReturnService(returnRepo, borrowRepo, engine)
	return svc, artifactRepo, borrowRepo, returnRepo, engine
}

func TestReturnCreate_ClosesLoanAndStoresVerdict(t *testing.T) {
	svc, artifactRepo, borrowRepo, _, engine := newReturnFixture()
	borrow := seedOpenLoan(artifactRepo, borrowRepo)

	record, err := svc.Create(context.Background(), &CreateReturnInput{
		BorrowRecordID: borrow.ID,
		ReturnPhotoURL: "/uploads/return/after.jpg",
	}, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, borrow.ID, record.BorrowRecordID)
	assert.Equal(t, string(domain.ConclusionAuthentic), record.AIConclusion)
	assert.Nil(t, record.FinalConclusion, "human review must start empty")
	assert.Equal(t, uint(7), record.OperatorID)
	assert.Equal(t, string(domain.BorrowStatusReturned), borrow.Status)
}

func TestReturnCreate_EngineFailurePersistsNothing(t *testing.T) {
	svc, artifactRepo, borrowRepo, returnRepo, engine := newReturnFixture()
	borrow := seedOpenLoan(artifactRepo, borrowRepo)
	engine.err = domain.ErrEngineUnavailable
	engine.result = nil

	_, err := svc.Create(context.Background(), &CreateReturnInput{
		BorrowRecordID: borrow.ID,
		ReturnPhotoURL: "/uploads/return/after.jpg",
	}, 7)
	require.ErrorIs(t, err, domain.ErrEngineUnavailable)

	assert.Empty(t, returnRepo.records, "no return record may exist without a verdict")
	assert.Equal(t, string(domain.BorrowStatusBorrowed), borrow.Status, "loan must stay open")
}

func TestReturnCreate_AlreadyReturned(t *testing.T) {
	svc, artifactRepo, borrowRepo, _, engine := newReturnFixture()
	borrow := seedOpenLoan(artifactRepo, borrowRepo)

	input := &CreateReturnInput{
		BorrowRecordID: borrow.ID,
		ReturnPhotoURL: "/uploads/return/after.jpg",
	}
	_, err := svc.Create(context.Background(), input, 7)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input, 7)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 1, engine.calls, "engine must not run for a closed loan")
}

func TestReturnCreate_BorrowNotFound(t *testing.T) {
	svc, _, _, _, _ := newReturnFixture()

	_, err := svc.Create(context.Background(), &CreateReturnInput{
		BorrowRecordID: 999,
		ReturnPhotoURL: "/uploads/return/after.jpg",
	}, 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReturnSetConclusion_RoleGate(t *testing.T) {
	svc, artifactRepo, borrowRepo, _, _ := newReturnFixture()
	borrow := seedOpenLoan(artifactRepo, borrowRepo)
	record, err := svc.Create(context.Background(), &CreateReturnInput{
		BorrowRecordID: borrow.ID,
		ReturnPhotoURL: "/uploads/return/after.jpg",
	}, 7)
	require.NoError(t, err)

	_, err = svc.SetConclusion(context.Background(), record.ID,
		&SetConclusionInput{Conclusion: "fake"}, 3, domain.RoleStaff)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReturnSetConclusion_OverwriteKeepsAIVerdict(t *testing.T) {
	svc, artifactRepo, borrowRepo, _, _ := newReturnFixture()
	borrow := seedOpenLoan(artifactRepo, borrowRepo)
	record, err := svc.Create(context.Background(), &CreateReturnInput{
		BorrowRecordID: borrow.ID,
		ReturnPhotoURL: "/uploads/return/after.jpg",
	}, 7)
	require.NoError(t, err)

	first, err := svc.SetConclusion(context.Background(), record.ID,
		&SetConclusionInput{Conclusion: "suspicious"}, 3, domain.RoleAppraiser)
	require.NoError(t, err)
	require.NotNil(t, first.FinalConclusion)
	assert.Equal(t, "suspicious", *first.FinalConclusion)
	assert.Equal(t, uint(3), *first.ReviewedBy)
	require.NotNil(t, first.ReviewedAt)

	second, err := svc.SetConclusion(context.Background(), record.ID,
		&SetConclusionInput{Conclusion: "authentic"}, 9, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "authentic", *second.FinalConclusion)
	assert.Equal(t, uint(9), *second.ReviewedBy, "last write wins")

	assert.Equal(t, string(domain.ConclusionAuthentic), second.AIConclusion,
		"AI verdict stays untouched by review")
}

func TestReturnSetConclusion_RejectsUnknownVerdict(t *testing.T) {
	svc, artifactRepo, borrowRepo, _, _ := newReturnFixture()
	borrow := seedOpenLoan(artifactRepo, borrowRepo)
	record, err := svc.Create(context.Background(), &CreateReturnInput{
		BorrowRecordID: borrow.ID,
		ReturnPhotoURL: "/uploads/return/after.jpg",
	}, 7)
	require.NoError(t, err)

	_, err = svc.SetConclusion(context.Background(), record.ID,
		&SetConclusionInput{Conclusion: "pristine"}, 3, domain.RoleAppraiser)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReturnDelete_ReopensLoan(t *testing.T) {
	svc, artifactRepo, borrowRepo, returnRepo, _ := newReturnFixture()
	borrow := seedOpenLoan(artifactRepo, borrowRepo)
	record, err := svc.Create(context.Background(), &CreateReturnInput{
		BorrowRecordID: borrow.ID,
		ReturnPhotoURL: "/uploads/return/after.jpg",
	}, 7)
	require.NoError(t, err)
	require.Equal(t, string(domain.BorrowStatusReturned), borrow.Status)

	require.NoError(t, svc.Delete(context.Background(), record.ID))

	assert.Empty(t, returnRepo.records)
	assert.Equal(t, string(domain.BorrowStatusBorrowed), borrow.Status,
		"deleting the return must revert the loan")
}

func TestReturnDelete_FreshReturnSucceeds(t *testing.T) {
	svc, artifactRepo, borrowRepo, _, engine := newReturnFixture()
	borrow := seedOpenLoan(artifactRepo, borrowRepo)

	input := &CreateReturnInput{
		BorrowRecordID: borrow.ID,
		ReturnPhotoURL: "/uploads/return/after.jpg",
	}
	record, err := svc.Create(context.Background(), input, 7)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), record.ID))

	fresh, err := svc.Create(context.Background(), input, 7)
	require.NoError(t, err, "a reverted loan must accept a new return")
	assert.NotEqual(t, record.ID, fresh.ID)
	assert.Equal(t, 2, engine.calls)
	assert.Equal(t, string(domain.BorrowStatusReturned), borrow.Status)
}

func TestReturnList_ConclusionMatchesEffectiveVerdict(t *testing.T) {
	svc, artifactRepo, borrowRepo, _, _ := newReturnFixture()
	borrow := seedOpenLoan(artifactRepo, borrowRepo)
	record, err := svc.Create(context.Background(), &CreateReturnInput{
		BorrowRecordID: borrow.ID,
		ReturnPhotoURL: "/uploads/return/after.jpg",
	}, 7)
	require.NoError(t, err)

	// Unreviewed: the AI verdict is the effective one.
	records, total, err := svc.List(context.Background(), &ListReturnsInput{
		Conclusion: string(domain.ConclusionAuthentic), Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)

	// Reviewed: the human conclusion overrides the AI one.
	_, err = svc.SetConclusion(context.Background(), record.ID,
		&SetConclusionInput{Conclusion: "suspicious"}, 3, domain.RoleAppraiser)
	require.NoError(t, err)

	_, total, err = svc.List(context.Background(), &ListReturnsInput{
		Conclusion: string(domain.ConclusionAuthentic), Limit: 10,
	})
	require.NoError(t, err)
	assert.Zero(t, total, "the AI verdict no longer counts once reviewed")

	_, total, err = svc.List(context.Background(), &ListReturnsInput{
		Conclusion: "suspicious", Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestReturnList_RejectsUnknownConclusion(t *testing.T) {
	svc, _, _, _, _ := newReturnFixture()

	_, _, err := svc.List(context.Background(), &ListReturnsInput{Conclusion: "mint"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
