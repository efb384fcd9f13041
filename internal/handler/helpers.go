package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/classwork-go-api/internal/service"
)

var errNoPrincipal = errors.New("user not authenticated")

// principalFromContext builds the explicit actor identity every service
// operation receives, from the locals the JWT middleware populated.
func principalFromContext(c *fiber.Ctx) (service.Principal, error) {
	userID, ok := c.Locals("user_id").(uint)
	if !ok || userID == 0 {
		return service.Principal{}, errNoPrincipal
	}

	role, _ := c.Locals("user_role").(string)
	return service.Principal{ID: userID, Role: role}, nil
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := c.Params(key)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value := c.Query(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	result := uint(parsed)
	return &result, nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := c.Query(key)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return parsed, nil
}
