package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// actorFromLocals reads the id the auth middleware stashed. The token
// carries it as a string.
func actorFromLocals(c *fiber.Ctx) (int64, error) {
	raw, _ := c.Locals("user_id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.ErrUnauthorized
	}
	return id, nil
}

func roleFromLocals(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return id, nil
}
