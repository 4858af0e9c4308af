package handlers

import (
	"relic-ledger/internal/adapters/http/middleware"
	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/core/services"
	"relic-ledger/internal/pkg/pagination"
	"relic-ledger/internal/pkg/response"
	"relic-ledger/internal/pkg/upload"

	"github.com/gofiber/fiber/v2"
)

// BorrowHandler handles borrow ledger endpoints
type BorrowHandler struct {
	borrowService *services.BorrowService
}

// NewBorrowHandler creates a new borrow handler
func NewBorrowHandler(borrowService *services.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrowService: borrowService}
}

// Create opens a loan from a multipart form with the loan-time photo
func (h *BorrowHandler) Create(c *fiber.Ctx) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return response.BadRequest(c, "Loan-time photo is required")
	}

	artifactID, err := parseID(c.FormValue("artifact_id"))
	if err != nil {
		return response.BadRequest(c, "Invalid artifact ID")
	}

	photoURL, err := upload.Save(c, file, upload.SubdirBorrow)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	input := &services.CreateBorrowInput{
		ArtifactID:      artifactID,
		BorrowerName:    c.FormValue("borrower_name"),
		BorrowerContact: c.FormValue("borrower_contact"),
		BorrowPhotoURL:  photoURL,
		Notes:           c.FormValue("notes"),
	}
	if v := c.FormValue("borrow_date"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			upload.Delete(photoURL)
			return response.BadRequest(c, "Invalid borrow date")
		}
		input.BorrowDate = t
	}
	if v := c.FormValue("expected_return_date"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			upload.Delete(photoURL)
			return response.BadRequest(c, "Invalid expected return date")
		}
		input.ExpectedReturnDate = &t
	}

	record, err := h.borrowService.Create(c.Context(), input, middleware.CurrentUserID(c))
	if err != nil {
		upload.Delete(photoURL)
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Borrow record created successfully", record.ToResponse())
}

// List returns a paginated page of borrow records
func (h *BorrowHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := &services.ListBorrowsInput{
		Status: c.Query("status"),
		Offset: params.Offset,
		Limit:  params.PageSize,
	}
	if v := c.Query("artifact_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			return response.BadRequest(c, "Invalid artifact ID")
		}
		input.ArtifactID = &id
	}

	records, total, err := h.borrowService.List(c.Context(), input)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	items := make([]*models.BorrowRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, r.ToResponse())
	}

	return response.Success(c, "Borrow records retrieved successfully",
		pagination.NewResponse(items, params, total))
}

// Get returns a single borrow record
func (h *BorrowHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid borrow record ID")
	}

	record, err := h.borrowService.GetByID(c.Context(), id)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Borrow record retrieved successfully", record.ToResponse())
}

// GetByArtifactNo returns the open loan for an artifact business number
func (h *BorrowHandler) GetByArtifactNo(c *fiber.Ctx) error {
	artifactNo := c.Params("artifact_no")
	if artifactNo == "" {
		return response.BadRequest(c, "Artifact number is required")
	}

	record, err := h.borrowService.GetOpenByArtifactNo(c.Context(), artifactNo)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Open borrow record retrieved successfully", record.ToResponse())
}

// Update edits an open loan's descriptive fields
func (h *BorrowHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid borrow record ID")
	}

	var input services.UpdateBorrowInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.borrowService.Update(c.Context(), id, &input)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Borrow record updated successfully", record.ToResponse())
}

// Delete removes a borrow record
func (h *BorrowHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid borrow record ID")
	}

	if err := h.borrowService.Delete(c.Context(), id); err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Borrow record deleted successfully", nil)
}

// Upload stores a standalone photo and returns its URL
func (h *BorrowHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return response.BadRequest(c, "Photo file is required")
	}

	photoURL, err := upload.Save(c, file, upload.SubdirTemp)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Photo uploaded successfully", fiber.Map{
		"url": photoURL,
	})
}
