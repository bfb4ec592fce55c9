package handlers

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"TalentHive/internal/apperr"
	"TalentHive/internal/lifecycle"
	"TalentHive/internal/logger"
	"TalentHive/internal/models"
	"TalentHive/internal/services"
)

const maxDeliverableSize = int64(10 * 1024 * 1024) // 10MB

// DeliverableUploader stores a deliverable file and returns its reference.
type DeliverableUploader interface {
	UploadDeliverable(ctx context.Context, contractID string, file *multipart.FileHeader) (*services.UploadResult, error)
}

type contractReader interface {
	Get(ctx context.Context, id uuid.UUID, userID uint) (*models.Contract, error)
}

type FileHandler struct {
	uploader  DeliverableUploader
	contracts contractReader
	log       *logger.Logger
}

func NewFileHandler(uploader DeliverableUploader, contracts contractReader, log *logger.Logger) *FileHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &FileHandler{uploader: uploader, contracts: contracts, log: log}
}

// UploadDeliverable stores a file for the freelancer of a contract. The
// returned reference is passed to milestone submit.
func (h *FileHandler) UploadDeliverable(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	if h.uploader == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "File storage is not configured",
		})
	}
	contractID, err := uuid.Parse(c.FormValue("contract_id"))
	if err != nil {
		return respondError(c, h.log, apperr.Validation("file.upload", "contract_id is required"))
	}
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}
	if file.Size > maxDeliverableSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large. Maximum size is %dMB", maxDeliverableSize/(1024*1024)),
		})
	}

	contract, err := h.contracts.Get(c.UserContext(), contractID, userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if lifecycle.ResolveRole(contract, userID) != lifecycle.RoleFreelancer {
		return respondError(c, h.log, apperr.Forbidden("file.upload", "you are not the freelancer on this contract"))
	}

	result, err := h.uploader.UploadDeliverable(c.UserContext(), contract.ID.String(), file)
	if err != nil {
		h.log.Error("deliverable upload failed", "contract_id", contract.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload file",
		})
	}
	return c.JSON(fiber.Map{
		"message": "File uploaded successfully",
		"file":    result,
	})
}
