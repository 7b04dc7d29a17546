package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minijira/issue-tracker/internal/api/dto"
	"github.com/minijira/issue-tracker/internal/service"
)

// UsersHandler lists users for assignee pickers.
type UsersHandler struct {
	directory *service.DirectoryService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(directory *service.DirectoryService) *UsersHandler {
	return &UsersHandler{directory: directory}
}

// ListUsers GET /users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.directory.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponses(users))
}
