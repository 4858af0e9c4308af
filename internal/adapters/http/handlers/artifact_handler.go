package handlers

import (
	"relic-ledger/internal/core/services"
	"relic-ledger/internal/pkg/pagination"
	"relic-ledger/internal/pkg/response"
	"relic-ledger/internal/pkg/upload"

	"github.com/gofiber/fiber/v2"
)

// ArtifactHandler handles artifact registry endpoints
type ArtifactHandler struct {
	artifactService *services.ArtifactService
}

// NewArtifactHandler creates a new artifact handler
func NewArtifactHandler(artifactService *services.ArtifactService) *ArtifactHandler {
	return &ArtifactHandler{artifactService: artifactService}
}

// List returns a paginated page of artifacts
func (h *ArtifactHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	artifacts, total, err := h.artifactService.List(c.Context(), &services.ListArtifactsInput{
		Search: c.Query("search"),
		Offset: params.Offset,
		Limit:  params.PageSize,
	})
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Artifacts retrieved successfully",
		pagination.NewResponse(artifacts, params, total))
}

// Get returns a single artifact
func (h *ArtifactHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid artifact ID")
	}

	artifact, err := h.artifactService.GetByID(c.Context(), id)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Artifact retrieved successfully", artifact)
}

// Create registers an artifact from a multipart form with a photo file
func (h *ArtifactHandler) Create(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return response.BadRequest(c, "Artifact photo is required")
	}

	imageURL, err := upload.Save(c, file, upload.SubdirArtifacts)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	input := &services.CreateArtifactInput{
		ArtifactNo:  c.FormValue("artifact_no"),
		Name:        c.FormValue("name"),
		Author:      c.FormValue("author"),
		Category:    c.FormValue("category"),
		Era:         c.FormValue("era"),
		Size:        c.FormValue("size"),
		Description: c.FormValue("description"),
		ImageURL:    imageURL,
	}

	artifact, err := h.artifactService.Create(c.Context(), input)
	if err != nil {
		upload.Delete(imageURL)
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Artifact created successfully", artifact)
}

// Update applies a partial update; the artifact number is immutable
func (h *ArtifactHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid artifact ID")
	}

	var input services.UpdateArtifactInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	artifact, err := h.artifactService.Update(c.Context(), id, &input)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Artifact updated successfully", artifact)
}

// Delete removes an artifact that has no open loan
func (h *ArtifactHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid artifact ID")
	}

	if err := h.artifactService.Delete(c.Context(), id); err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Artifact deleted successfully", nil)
}
