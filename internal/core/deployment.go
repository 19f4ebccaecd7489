package core

import "time"

type DeploymentStatus string

const (
	DeploymentBuilding  DeploymentStatus = "building"
	DeploymentSuccess   DeploymentStatus = "success"
	DeploymentError     DeploymentStatus = "error"
	DeploymentCancelled DeploymentStatus = "cancelled"
)

// Terminal reports whether a deployment has reached a final state.
func (s DeploymentStatus) Terminal() bool {
	return s == DeploymentSuccess || s == DeploymentError || s == DeploymentCancelled
}

// Deployment is one build-and-release attempt for a project. Rows are never
// deleted; they form the audit history even after the project is gone.
type Deployment struct {
	ID            string           `json:"id" db:"id"`
	ProjectID     string           `json:"project_id" db:"project_id"`
	Status        DeploymentStatus `json:"status" db:"status"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	Duration      *int             `json:"duration,omitempty" db:"duration"`
	URL           *string          `json:"url,omitempty" db:"url"`
	CommitHash    *string          `json:"commit_hash,omitempty" db:"commit_hash"`
	CommitMessage *string          `json:"commit_message,omitempty" db:"commit_message"`
	Logs          *string          `json:"logs,omitempty" db:"logs"`
}

// DeploymentUpdate carries the mutable fields of a deployment. Only the
// orchestrator and the reconciler write these.
type DeploymentUpdate struct {
	Status   *DeploymentStatus
	Duration *int
	URL      *string
	Logs     *string
}
