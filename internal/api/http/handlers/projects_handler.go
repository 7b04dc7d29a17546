package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/minijira/issue-tracker/internal/api/dto"
	"github.com/minijira/issue-tracker/internal/service"
)

// ProjectsHandler manages project endpoints.
type ProjectsHandler struct {
	directory *service.DirectoryService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(directory *service.DirectoryService) *ProjectsHandler {
	return &ProjectsHandler{directory: directory}
}

// ListProjects GET /projects.
func (h *ProjectsHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.directory.ListProjects(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProjectResponses(projects))
}

// CreateProject POST /projects.
func (h *ProjectsHandler) CreateProject(c *fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	project, err := h.directory.CreateProject(c.UserContext(), req.Name, req.Key)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewProjectResponse(project))
}

// RenameProject PATCH /projects/:id.
func (h *ProjectsHandler) RenameProject(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.RenameProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	project, err := h.directory.RenameProject(c.UserContext(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProjectResponse(project))
}

// DeleteProject DELETE /projects/:id.
func (h *ProjectsHandler) DeleteProject(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	project, err := h.directory.DeleteProject(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProjectResponse(project))
}
