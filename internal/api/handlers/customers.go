package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leozw/launchpad/internal/core"
	"github.com/leozw/launchpad/internal/customers"
)

type RegisterCustomerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PlanType string `json:"plan_type"`
}

func (h *Handler) RegisterCustomer(c *gin.Context) {
	var req RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customers.Register(c.Request.Context(), customers.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		PlanType: core.PlanType(req.PlanType),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Customer created successfully",
		"customer": customer,
	})
}
