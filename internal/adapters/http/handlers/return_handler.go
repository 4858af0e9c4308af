package handlers

import (
	"relic-ledger/internal/adapters/http/middleware"
	"relic-ledger/internal/core/services"
	"relic-ledger/internal/pkg/pagination"
	"relic-ledger/internal/pkg/response"
	"relic-ledger/internal/pkg/upload"

	"github.com/gofiber/fiber/v2"
)

// ReturnHandler handles the return and verification workflow endpoints
type ReturnHandler struct {
	returnService     *services.ReturnService
	comparisonService *services.ComparisonService
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(returnService *services.ReturnService, comparisonService *services.ComparisonService) *ReturnHandler {
	return &ReturnHandler{
		returnService:     returnService,
		comparisonService: comparisonService,
	}
}

// Create closes a loan from a multipart form with the return-time photo.
// The comparison engine must deliver a verdict before anything persists.
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return response.BadRequest(c, "Return-time photo is required")
	}

	borrowRecordID, err := parseID(c.FormValue("borrow_record_id"))
	if err != nil {
		return response.BadRequest(c, "Invalid borrow record ID")
	}

	photoURL, err := upload.Save(c, file, upload.SubdirReturn)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	input := &services.CreateReturnInput{
		BorrowRecordID: borrowRecordID,
		ReturnPhotoURL: photoURL,
		Notes:          c.FormValue("notes"),
	}
	if v := c.FormValue("return_date"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			upload.Delete(photoURL)
			return response.BadRequest(c, "Invalid return date")
		}
		input.ReturnDate = t
	}

	record, err := h.returnService.Create(c.Context(), input, middleware.CurrentUserID(c))
	if err != nil {
		upload.Delete(photoURL)
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Return record created successfully", record)
}

// List returns a paginated page of return records
func (h *ReturnHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := &services.ListReturnsInput{
		Conclusion: c.Query("conclusion"),
		Offset:     params.Offset,
		Limit:      params.PageSize,
	}
	if v := c.Query("artifact_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			return response.BadRequest(c, "Invalid artifact ID")
		}
		input.ArtifactID = &id
	}

	records, total, err := h.returnService.List(c.Context(), input)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Return records retrieved successfully",
		pagination.NewResponse(records, params, total))
}

// Get returns a single return record
func (h *ReturnHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid return record ID")
	}

	record, err := h.returnService.GetByID(c.Context(), id)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Return record retrieved successfully", record)
}

// SetConclusion records the reviewer's final conclusion on a return record
func (h *ReturnHandler) SetConclusion(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid return record ID")
	}

	var input services.SetConclusionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.returnService.SetConclusion(c.Context(), id, &input,
		middleware.CurrentUserID(c), middleware.CurrentRole(c))
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Conclusion recorded successfully", record)
}

// Delete removes a return record and reopens its loan
func (h *ReturnHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid return record ID")
	}

	if err := h.returnService.Delete(c.Context(), id); err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Return record deleted successfully", nil)
}

// Compare runs a synchronous preview comparison without persisting anything
func (h *ReturnHandler) Compare(c *fiber.Ctx) error {
	var input services.CompareInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.comparisonService.Compare(c.Context(), &input)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Comparison completed successfully", result)
}

// CompareAsync starts a background comparison and returns a task handle
func (h *ReturnHandler) CompareAsync(c *fiber.Ctx) error {
	var input services.CompareInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	task, err := h.comparisonService.CompareAsync(c.Context(), &input)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Comparison task created successfully", task)
}

// GetTask returns the state of an async comparison task
func (h *ReturnHandler) GetTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	if taskID == "" {
		return response.BadRequest(c, "Task ID is required")
	}

	task, err := h.comparisonService.GetTask(c.Context(), taskID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Comparison task retrieved successfully", task)
}
