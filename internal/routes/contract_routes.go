package routes

import (
	"github.com/gofiber/fiber/v2"
)

func SetupContractRoutes(api fiber.Router, h Handlers, protected fiber.Handler) {
	contracts := api.Group("/contracts", protected)

	contracts.Post("/", h.Contracts.CreateContract)
	contracts.Get("/", h.Contracts.GetMyContracts)
	contracts.Get("/:id", h.Contracts.GetContract)
	contracts.Post("/:id/sign", h.Contracts.SignContract)

	// Milestones
	contracts.Post("/:id/milestones/:milestoneId/start", h.Contracts.StartMilestone)
	contracts.Post("/:id/milestones/:milestoneId/submit", h.Contracts.SubmitMilestone)
	contracts.Post("/:id/milestones/:milestoneId/approve", h.Contracts.ApproveMilestone)
	contracts.Post("/:id/milestones/:milestoneId/reject", h.Contracts.RejectMilestone)

	// Amendments
	contracts.Post("/:id/amendments", h.Contracts.ProposeAmendment)
	contracts.Post("/:id/amendments/:amendmentId/respond", h.Contracts.RespondAmendment)

	// Lifecycle
	contracts.Post("/:id/cancel", h.Contracts.CancelContract)
	contracts.Post("/:id/dispute", h.Contracts.RaiseDispute)
	contracts.Post("/:id/pause", h.Contracts.PauseContract)
	contracts.Post("/:id/resume", h.Contracts.ResumeContract)

	// Escrow per milestone
	contracts.Post("/:id/milestones/:milestoneId/escrow", h.Escrow.CreateEscrow)
	contracts.Get("/:id/transactions", h.Escrow.GetContractTransactions)

	files := api.Group("/files", protected)
	files.Post("/deliverables", h.Files.UploadDeliverable)
}
