package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leozw/launchpad/internal/core"
	"github.com/leozw/launchpad/internal/projects"
)

type CreateProjectRequest struct {
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	GithubRepo      *string `json:"github_repo"`
	BuildCommand    *string `json:"build_command"`
	OutputDirectory *string `json:"output_directory"`
}

func (h *Handler) ListProjects(c *gin.Context) {
	customerID := c.GetString("customer_id")

	list, err := h.projects.List(c.Request.Context(), customerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": list})
}

func (h *Handler) GetProject(c *gin.Context) {
	projectID := c.Param("id")
	customerID := c.GetString("customer_id")

	project, err := h.projects.Get(c.Request.Context(), projectID, customerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerID := c.GetString("customer_id")

	project, err := h.projects.Create(c.Request.Context(), customerID, projects.CreateInput{
		Name:            req.Name,
		Description:     req.Description,
		GithubRepo:      req.GithubRepo,
		BuildCommand:    req.BuildCommand,
		OutputDirectory: req.OutputDirectory,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": project,
	})
}

func (h *Handler) UpdateProject(c *gin.Context) {
	projectID := c.Param("id")
	customerID := c.GetString("customer_id")

	// customer_id is absent from ProjectUpdate, so an attempt to change the
	// owner in the request body is silently dropped here.
	var upd core.ProjectUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Update(c.Request.Context(), projectID, customerID, upd)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully",
		"project": project,
	})
}

func (h *Handler) DeleteProject(c *gin.Context) {
	projectID := c.Param("id")
	customerID := c.GetString("customer_id")

	if err := h.projects.Delete(c.Request.Context(), projectID, customerID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

func (h *Handler) VerifyProjectDomains(c *gin.Context) {
	projectID := c.Param("id")
	customerID := c.GetString("customer_id")

	project, err := h.projects.Get(c.Request.Context(), projectID, customerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	results := h.verifier.Verify(c.Request.Context(), project.Domains)
	c.JSON(http.StatusOK, gin.H{"domains": results})
}
