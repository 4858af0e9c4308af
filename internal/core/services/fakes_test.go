package services

import (
	"context"
	"time"

	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/adapters/persistence/repositories"
	"relic-ledger/internal/core/domain"

	"gorm.io/gorm"
)

// In-memory repository fakes. They model just enough of the persistence
// contract for service tests: not-found maps to gorm.ErrRecordNotFound and
// CreateClosingLoan/DeleteRevertingLoan flip the linked borrow status the
// way the transactional implementations do.

type fakeArtifactRepo struct {
	artifacts map[uint]*models.Artifact
	openLoans map[uint]int64
	nextID    uint
}

func newFakeArtifactRepo() *fakeArtifactRepo {
	return &fakeArtifactRepo{
		artifacts: make(map[uint]*models.Artifact),
		openLoans: make(map[uint]int64),
		nextID:    1,
	}
}

func (f *fakeArtifactRepo) Create(ctx context.Context, artifact *models.Artifact) error {
	artifact.ID = f.nextID
	f.nextID++
	f.artifacts[artifact.ID] = artifact
	return nil
}

func (f *fakeArtifactRepo) GetByID(ctx context.Context, id uint) (*models.Artifact, error) {
	if a, ok := f.artifacts[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeArtifactRepo) GetByArtifactNo(ctx context.Context, artifactNo string) (*models.Artifact, error) {
	for _, a := range f.artifacts {
		if a.ArtifactNo == artifactNo {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeArtifactRepo) Update(ctx context.Context, artifact *models.Artifact) error {
	f.artifacts[artifact.ID] = artifact
	return nil
}

func (f *fakeArtifactRepo) Delete(ctx context.Context, id uint) error {
	delete(f.artifacts, id)
	return nil
}

func (f *fakeArtifactRepo) List(ctx context.Context, filter repositories.ArtifactFilter, offset, limit int) ([]*models.Artifact, int64, error) {
	out := make([]*models.Artifact, 0, len(f.artifacts))
	for _, a := range f.artifacts {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeArtifactRepo) ExistsByArtifactNo(ctx context.Context, artifactNo string) (bool, error) {
	_, err := f.GetByArtifactNo(ctx, artifactNo)
	return err == nil, nil
}

func (f *fakeArtifactRepo) CountOpenLoans(ctx context.Context, artifactID uint) (int64, error) {
	return f.openLoans[artifactID], nil
}

type fakeBorrowRepo struct {
	records   map[uint]*models.BorrowRecord
	artifacts *fakeArtifactRepo
	nextID    uint
}

func newFakeBorrowRepo(artifacts *fakeArtifactRepo) *fakeBorrowRepo {
	return &fakeBorrowRepo{
		records:   make(map[uint]*models.BorrowRecord),
		artifacts: artifacts,
		nextID:    1,
	}
}

// insert bypasses the invariant checks, for seeding test state.
func (f *fakeBorrowRepo) insert(record *models.BorrowRecord) {
	record.ID = f.nextID
	f.nextID++
	f.records[record.ID] = record
}

func (f *fakeBorrowRepo) CreateOpeningLoan(ctx context.Context, record *models.BorrowRecord) error {
	if _, ok := f.artifacts.artifacts[record.ArtifactID]; !ok {
		return domain.ErrArtifactNotFound
	}
	if _, err := f.GetOpenByArtifactID(ctx, record.ArtifactID); err == nil {
		return domain.ErrBorrowOpenExists
	}
	f.insert(record)
	return nil
}

func (f *fakeBorrowRepo) GetByID(ctx context.Context, id uint) (*models.BorrowRecord, error) {
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBorrowRepo) GetOpenByArtifactID(ctx context.Context, artifactID uint) (*models.BorrowRecord, error) {
	for _, r := range f.records {
		if r.ArtifactID == artifactID && r.IsOpen() {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBorrowRepo) Update(ctx context.Context, record *models.BorrowRecord) error {
	f.records[record.ID] = record
	return nil
}

func (f *fakeBorrowRepo) Delete(ctx context.Context, id uint) error {
	delete(f.records, id)
	return nil
}

func (f *fakeBorrowRepo) List(ctx context.Context, filter repositories.BorrowFilter, offset, limit int) ([]*models.BorrowRecord, int64, error) {
	out := make([]*models.BorrowRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeBorrowRepo) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, r := range f.records {
		if r.IsOverdue(now) {
			n++
		}
	}
	return n, nil
}

type fakeReturnRepo struct {
	records    map[uint]*models.ReturnRecord
	borrowRepo *fakeBorrowRepo
	nextID     uint
}

func newFakeReturnRepo(borrowRepo *fakeBorrowRepo) *fakeReturnRepo {
	return &fakeReturnRepo{
		records:    make(map[uint]*models.ReturnRecord),
		borrowRepo: borrowRepo,
		nextID:     1,
	}
}

func (f *fakeReturnRepo) CreateClosingLoan(ctx context.Context, record *models.ReturnRecord) error {
	borrow, ok := f.borrowRepo.records[record.BorrowRecordID]
	if !ok {
		return domain.ErrBorrowNotFound
	}
	if borrow.Status != string(domain.BorrowStatusBorrowed) {
		return domain.ErrAlreadyReturned
	}
	record.ID = f.nextID
	f.nextID++
	f.records[record.ID] = record
	borrow.Status = string(domain.BorrowStatusReturned)
	return nil
}

func (f *fakeReturnRepo) GetByID(ctx context.Context, id uint) (*models.ReturnRecord, error) {
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReturnRepo) GetByBorrowRecordID(ctx context.Context, borrowRecordID uint) (*models.ReturnRecord, error) {
	for _, r := range f.records {
		if r.BorrowRecordID == borrowRecordID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReturnRepo) Update(ctx context.Context, record *models.ReturnRecord) error {
	f.records[record.ID] = record
	return nil
}

func (f *fakeReturnRepo) DeleteRevertingLoan(ctx context.Context, record *models.ReturnRecord) error {
	delete(f.records, record.ID)
	if borrow, ok := f.borrowRepo.records[record.BorrowRecordID]; ok {
		borrow.Status = string(domain.BorrowStatusBorrowed)
	}
	return nil
}

// effectiveConclusion mirrors the COALESCE filter in the real repository:
// the human conclusion once a review exists, the AI one until then.
func effectiveConclusion(r *models.ReturnRecord) string {
	if r.FinalConclusion != nil {
		return *r.FinalConclusion
	}
	return r.AIConclusion
}

func (f *fakeReturnRepo) List(ctx context.Context, filter repositories.ReturnFilter, offset, limit int) ([]*models.ReturnRecord, int64, error) {
	out := make([]*models.ReturnRecord, 0, len(f.records))
	for _, r := range f.records {
		if filter.Conclusion != "" && effectiveConclusion(r) != filter.Conclusion {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeReturnRepo) CountByConclusion(ctx context.Context, conclusion string) (int64, error) {
	var n int64
	for _, r := range f.records {
		if effectiveConclusion(r) == conclusion {
			n++
		}
	}
	return n, nil
}

// fakeEngine returns a canned verdict or error and counts invocations
type fakeEngine struct {
	result *domain.ComparisonResult
	err    error
	calls  int
}

func (f *fakeEngine) Compare(ctx context.Context, beforePhoto, afterPhoto string) (*domain.ComparisonResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func authenticResult() *domain.ComparisonResult {
	dims := make(map[string]domain.DimensionResult, len(domain.ComparisonDimensions))
	for _, name := range domain.ComparisonDimensions {
		dims[name] = domain.DimensionResult{
			Status:      domain.DimensionNormal,
			Score:       0.92,
			Description: name + " features match the loan-time photo",
		}
	}
	return &domain.ComparisonResult{
		Conclusion:  domain.ConclusionAuthentic,
		Confidence:  0.92,
		Dimensions:  dims,
		EvaluatedAt: time.Now(),
	}
}

func seedOpenLoan(artifactRepo *fakeArtifactRepo, borrowRepo *fakeBorrowRepo) *models.BorrowRecord {
	artifact := &models.Artifact{
		ArtifactNo: "REL-001",
		Name:       "Spring Mountain Scroll",
		Category:   "painting",
		ImageURL:   "/uploads/artifacts/rel-001.jpg",
	}
	artifactRepo.Create(context.Background(), artifact)

	borrow := &models.BorrowRecord{
		ArtifactID:      artifact.ID,
		BorrowerName:    "City Museum",
		BorrowerContact: "curator@example.com",
		BorrowPhotoURL:  "/uploads/borrow/before.jpg",
		BorrowDate:      time.Now().AddDate(0, 0, -7),
		Status:          string(domain.BorrowStatusBorrowed),
		OperatorID:      1,
	}
	borrowRepo.insert(borrow)
	return borrow
}
