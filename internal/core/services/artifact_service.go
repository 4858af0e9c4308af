package services

import (
	"context"
	"errors"

	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/adapters/persistence/repositories"
	"relic-ledger/internal/core/domain"
	"relic-ledger/internal/pkg/validate"

	"gorm.io/gorm"
)

// ArtifactService handles artifact registry business logic
type ArtifactService struct {
	artifactRepo repositories.ArtifactRepository
}

// NewArtifactService creates a new artifact service
func NewArtifactService(artifactRepo repositories.ArtifactRepository) *ArtifactService {
	return &ArtifactService{artifactRepo: artifactRepo}
}

// CreateArtifactInput represents create artifact input
type CreateArtifactInput struct {
	ArtifactNo  string `json:"artifact_no" validate:"required,max=50"`
	Name        string `json:"name" validate:"required,max=200"`
	Author      string `json:"author" validate:"max=100"`
	Category    string `json:"category" validate:"required,max=50"`
	Era         string `json:"era" validate:"max=50"`
	Size        string `json:"size" validate:"max=50"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url" validate:"required"`
}

// UpdateArtifactInput represents partial artifact update input
type UpdateArtifactInput struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Author      *string `json:"author" validate:"omitempty,max=100"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
	Era         *string `json:"era" validate:"omitempty,max=50"`
	Size        *string `json:"size" validate:"omitempty,max=50"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// ListArtifactsInput represents list filters
type ListArtifactsInput struct {
	Search string
	Offset int
	Limit  int
}

// Create registers a new artifact
func (s *ArtifactService) Create(ctx context.Context, input *CreateArtifactInput) (*models.Artifact, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	exists, err := s.artifactRepo.ExistsByArtifactNo(ctx, input.ArtifactNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrArtifactNoTaken
	}

	artifact := &models.Artifact{
		ArtifactNo:  input.ArtifactNo,
		Name:        input.Name,
		Author:      input.Author,
		Category:    input.Category,
		Era:         input.Era,
		Size:        input.Size,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}

	if err := s.artifactRepo.Create(ctx, artifact); err != nil {
		return nil, err
	}

	return artifact, nil
}

// GetByID gets an artifact by ID
func (s *ArtifactService) GetByID(ctx context.Context, id uint) (*models.Artifact, error) {
	artifact, err := s.artifactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, err
	}
	return artifact, nil
}

// Update applies a partial update; identity (artifact_no) is immutable
func (s *ArtifactService) Update(ctx context.Context, id uint, input *UpdateArtifactInput) (*models.Artifact, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	artifact, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		artifact.Name = *input.Name
	}
	if input.Author != nil {
		artifact.Author = *input.Author
	}
	if input.Category != nil {
		artifact.Category = *input.Category
	}
	if input.Era != nil {
		artifact.Era = *input.Era
	}
	if input.Size != nil {
		artifact.Size = *input.Size
	}
	if input.Description != nil {
		artifact.Description = *input.Description
	}
	if input.ImageURL != nil {
		artifact.ImageURL = *input.ImageURL
	}

	if err := s.artifactRepo.Update(ctx, artifact); err != nil {
		return nil, err
	}

	return artifact, nil
}

// Delete removes an artifact. Rejected while any loan referencing it is
// still open.
func (s *ArtifactService) Delete(ctx context.Context, id uint) error {
	artifact, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	open, err := s.artifactRepo.CountOpenLoans(ctx, artifact.ID)
	if err != nil {
		return err
	}
	if open > 0 {
		return domain.ErrArtifactOnLoan
	}

	return s.artifactRepo.Delete(ctx, artifact.ID)
}

// List lists artifacts with optional text search
func (s *ArtifactService) List(ctx context.Context, input *ListArtifactsInput) ([]*models.Artifact, int64, error) {
	filter := repositories.ArtifactFilter{Search: input.Search}
	return s.artifactRepo.List(ctx, filter, input.Offset, input.Limit)
}
