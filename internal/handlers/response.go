package handlers

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"TalentHive/internal/apperr"
	"TalentHive/internal/logger"
)

var validate = validator.New()

// respondError renders err as {"error", "code"} with the status of its kind.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	kind := apperr.KindOf(err)
	msg := apperr.MessageOf(err)
	if kind == "" {
		kind = apperr.KindInternal
	}
	if kind == apperr.KindInternal {
		log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		msg = "Internal server error"
	}
	return c.Status(apperr.HTTPStatus(kind)).JSON(fiber.Map{
		"error": msg,
		"code":  kind,
	})
}

// parseBody decodes and validates the JSON request body into req.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperr.Validation("request.body", "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return apperr.Validation("request.body", "%s", describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		default:
			parts = append(parts, fe.Field()+" failed "+fe.Tag()+" validation")
		}
	}
	return strings.Join(parts, "; ")
}

func currentUser(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("user_id").(uint)
	return id, ok && id != 0
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("request.params", "invalid %s", name)
	}
	return id, nil
}

func intQuery(c *fiber.Ctx, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
