package repositories

import (
	"context"
	"time"

	"relic-ledger/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// ArtifactFilter narrows artifact listings
type ArtifactFilter struct {
	Search string
}

// ArtifactRepository defines artifact registry data access
type ArtifactRepository interface {
	Create(ctx context.Context, artifact *models.Artifact) error
	GetByID(ctx context.Context, id uint) (*models.Artifact, error)
	GetByArtifactNo(ctx context.Context, artifactNo string) (*models.Artifact, error)
	Update(ctx context.Context, artifact *models.Artifact) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ArtifactFilter, offset, limit int) ([]*models.Artifact, int64, error)
	ExistsByArtifactNo(ctx context.Context, artifactNo string) (bool, error)
	CountOpenLoans(ctx context.Context, artifactID uint) (int64, error)
}

// BorrowFilter narrows borrow record listings
type BorrowFilter struct {
	Status     string
	ArtifactID *uint
	// OverdueAt, when set, restricts to open loans past their expected
	// return date as of the given instant.
	OverdueAt *time.Time
}

// BorrowRepository defines borrow ledger data access.
// CreateOpeningLoan is transactional: the artifact row is locked and the
// one-open-loan-per-artifact rule is re-checked inside the same
// transaction that inserts the record.
type BorrowRepository interface {
	CreateOpeningLoan(ctx context.Context, record *models.BorrowRecord) error
	GetByID(ctx context.Context, id uint) (*models.BorrowRecord, error)
	GetOpenByArtifactID(ctx context.Context, artifactID uint) (*models.BorrowRecord, error)
	Update(ctx context.Context, record *models.BorrowRecord) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter BorrowFilter, offset, limit int) ([]*models.BorrowRecord, int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
}

// ReturnFilter narrows return record listings
type ReturnFilter struct {
	Conclusion string
	ArtifactID *uint
}

// ReturnRepository defines return/verification data access.
// CreateClosingLoan and DeleteRevertingLoan are transactional: the return
// write and the borrow status flip commit or roll back together.
type ReturnRepository interface {
	CreateClosingLoan(ctx context.Context, record *models.ReturnRecord) error
	GetByID(ctx context.Context, id uint) (*models.ReturnRecord, error)
	GetByBorrowRecordID(ctx context.Context, borrowRecordID uint) (*models.ReturnRecord, error)
	Update(ctx context.Context, record *models.ReturnRecord) error
	DeleteRevertingLoan(ctx context.Context, record *models.ReturnRecord) error
	List(ctx context.Context, filter ReturnFilter, offset, limit int) ([]*models.ReturnRecord, int64, error)
	CountByConclusion(ctx context.Context, conclusion string) (int64, error)
}
