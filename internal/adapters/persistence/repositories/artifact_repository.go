package repositories

import (
	"context"

	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/core/domain"

	"gorm.io/gorm"
)

// artifactRepository implements ArtifactRepository interface
type artifactRepository struct {
	db *gorm.DB
}

// NewArtifactRepository creates a new artifact repository
func NewArtifactRepository(db *gorm.DB) ArtifactRepository {
	return &artifactRepository{db: db}
}

// Create creates a new artifact
func (r *artifactRepository) Create(ctx context.Context, artifact *models.Artifact) error {
	return r.db.WithContext(ctx).Create(artifact).Error
}

// GetByID gets an artifact by ID
func (r *artifactRepository) GetByID(ctx context.Context, id uint) (*models.Artifact, error) {
	var artifact models.Artifact
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&artifact).Error
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// GetByArtifactNo gets an artifact by its business number
func (r *artifactRepository) GetByArtifactNo(ctx context.Context, artifactNo string) (*models.Artifact, error) {
	var artifact models.Artifact
	err := r.db.WithContext(ctx).Where("artifact_no = ?", artifactNo).First(&artifact).Error
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// Update updates an artifact
func (r *artifactRepository) Update(ctx context.Context, artifact *models.Artifact) error {
	return r.db.WithContext(ctx).Save(artifact).Error
}

// Delete removes an artifact for good so its number can be registered
// again. A soft delete would keep artifact_no occupied in the unique index.
func (r *artifactRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Artifact{}, id).Error
}

// List lists artifacts with optional text search over number, name and author
func (r *artifactRepository) List(ctx context.Context, filter ArtifactFilter, offset, limit int) ([]*models.Artifact, int64, error) {
	var artifacts []*models.Artifact
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Artifact{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"artifact_no LIKE ? OR name LIKE ? OR author LIKE ?",
			pattern, pattern, pattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&artifacts).Error
	if err != nil {
		return nil, 0, err
	}

	return artifacts, total, nil
}

// ExistsByArtifactNo checks if an artifact number is taken
func (r *artifactRepository) ExistsByArtifactNo(ctx context.Context, artifactNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Artifact{}).
		Where("artifact_no = ?", artifactNo).
		Count(&count).Error
	return count > 0, err
}

// CountOpenLoans counts non-returned borrow records referencing the artifact
func (r *artifactRepository) CountOpenLoans(ctx context.Context, artifactID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("artifact_id = ?", artifactID).
		Where("status <> ?", string(domain.BorrowStatusReturned)).
		Count(&count).Error
	return count, err
}
