package services

import (
	"context"
	"testing"

	"relic-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validArtifactInput() *CreateArtifactInput {
	return &CreateArtifactInput{
		ArtifactNo: "REL-100",
		Name:       "Jade Seal",
		Category:   "jade",
		ImageURL:   "/uploads/artifacts/rel-100.jpg",
	}
}

func TestArtifactCreate(t *testing.T) {
	repo := newFakeArtifactRepo()
	svc := NewArtifactService(repo)

	artifact, err := svc.Create(context.Background(), validArtifactInput())
	require.NoError(t, err)
	assert.NotZero(t, artifact.ID)
	assert.Equal(t, "REL-100", artifact.ArtifactNo)
}

func TestArtifactCreate_DuplicateArtifactNo(t *testing.T) {
	repo := newFakeArtifactRepo()
	svc := NewArtifactService(repo)

	_, err := svc.Create(context.Background(), validArtifactInput())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validArtifactInput())
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestArtifactCreate_MissingRequiredFields(t *testing.T) {
	repo := newFakeArtifactRepo()
	svc := NewArtifactService(repo)

	input := validArtifactInput()
	input.Name = ""
	_, err := svc.Create(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestArtifactUpdate_ArtifactNoImmutable(t *testing.T) {
	repo := newFakeArtifactRepo()
	svc := NewArtifactService(repo)

	artifact, err := svc.Create(context.Background(), validArtifactInput())
	require.NoError(t, err)

	name := "Imperial Jade Seal"
	updated, err := svc.Update(context.Background(), artifact.ID, &UpdateArtifactInput{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Imperial Jade Seal", updated.Name)
	assert.Equal(t, "REL-100", updated.ArtifactNo)
}

func TestArtifactDelete_BlockedByOpenLoan(t *testing.T) {
	repo := newFakeArtifactRepo()
	svc := NewArtifactService(repo)

	artifact, err := svc.Create(context.Background(), validArtifactInput())
	require.NoError(t, err)
	repo.openLoans[artifact.ID] = 1

	err = svc.Delete(context.Background(), artifact.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	repo.openLoans[artifact.ID] = 0
	assert.NoError(t, svc.Delete(context.Background(), artifact.ID))
}

func TestArtifactGet_NotFound(t *testing.T) {
	svc := NewArtifactService(newFakeArtifactRepo())

	_, err := svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
