package handlers

import (
	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/customers"
	"github.com/leozw/launchpad/internal/deploy"
	"github.com/leozw/launchpad/internal/dispatch"
	"github.com/leozw/launchpad/internal/domains"
	"github.com/leozw/launchpad/internal/projects"
)

type Handler struct {
	customers *customers.Service
	projects  *projects.Service
	deploy    *deploy.Service
	dispatch  *dispatch.Service
	verifier  *domains.Verifier
	logger    *zap.Logger
}

func NewHandler(
	customerSvc *customers.Service,
	projectSvc *projects.Service,
	deploySvc *deploy.Service,
	dispatchSvc *dispatch.Service,
	verifier *domains.Verifier,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		customers: customerSvc,
		projects:  projectSvc,
		deploy:    deploySvc,
		dispatch:  dispatchSvc,
		verifier:  verifier,
		logger:    logger,
	}
}
