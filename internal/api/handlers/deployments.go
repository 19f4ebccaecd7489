package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type DeployRequest struct {
	CommitHash    string `json:"commit_hash"`
	CommitMessage string `json:"commit_message"`
}

// DeployProject accepts the build and returns 202: the caller is told
// building has started, not that it has finished. Completion is observable
// via GetDeployment / ListDeployments.
func (h *Handler) DeployProject(c *gin.Context) {
	projectID := c.Param("id")
	customerID := c.GetString("customer_id")

	var req DeployRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	deployment, err := h.deploy.Deploy(c.Request.Context(), projectID, customerID, req.CommitHash, req.CommitMessage)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":    "Deployment started",
		"deployment": deployment,
	})
}

func (h *Handler) ListDeployments(c *gin.Context) {
	projectID := c.Param("id")
	customerID := c.GetString("customer_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	deployments, err := h.deploy.ListByProject(c.Request.Context(), projectID, customerID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deployments": deployments})
}

func (h *Handler) GetDeployment(c *gin.Context) {
	projectID := c.Param("id")
	deploymentID := c.Param("deployment_id")
	customerID := c.GetString("customer_id")

	deployment, err := h.deploy.Get(c.Request.Context(), projectID, deploymentID, customerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deployment": deployment})
}
