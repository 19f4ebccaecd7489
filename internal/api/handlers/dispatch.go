package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SetLimitsRequest struct {
	CPUMs  int   `json:"cpu_ms"`
	Memory int64 `json:"memory"`
}

type SetRouteRequest struct {
	OutboundScriptID string `json:"outbound_script_id"`
}

func (h *Handler) SetDispatchLimits(c *gin.Context) {
	scriptID := c.Param("script_id")

	var req SetLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limits, err := h.dispatch.SetLimits(c.Request.Context(), scriptID, req.CPUMs, req.Memory)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"limits": limits})
}

func (h *Handler) GetDispatchLimits(c *gin.Context) {
	scriptID := c.Param("script_id")

	limits, err := h.dispatch.GetLimits(c.Request.Context(), scriptID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"limits": limits})
}

func (h *Handler) SetOutboundRoute(c *gin.Context) {
	scriptID := c.Param("script_id")

	var req SetRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := h.dispatch.SetRoute(c.Request.Context(), scriptID, req.OutboundScriptID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"outbound": route})
}

func (h *Handler) GetOutboundRoute(c *gin.Context) {
	scriptID := c.Param("script_id")

	route, err := h.dispatch.GetRoute(c.Request.Context(), scriptID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"outbound": route})
}
