package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectBuilding ProjectStatus = "building"
	ProjectError    ProjectStatus = "error"
	ProjectPaused   ProjectStatus = "paused"
)

// ValidProjectStatus reports whether s is one of the known project states.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectActive, ProjectBuilding, ProjectError, ProjectPaused:
		return true
	}
	return false
}

// Project is a deployable application unit. CustomerID never changes after
// creation. Status is owned by the deploy orchestrator while a build is in
// flight; active, error and paused are the stable rest states.
type Project struct {
	ID              string        `json:"id" db:"id"`
	Name            string        `json:"name" db:"name"`
	Description     *string       `json:"description,omitempty" db:"description"`
	CustomerID      string        `json:"customer_id" db:"customer_id"`
	Status          ProjectStatus `json:"status" db:"status"`
	LastDeployment  *time.Time    `json:"last_deployment,omitempty" db:"last_deployment"`
	Domains         StringSlice   `json:"domains" db:"domains"`
	GithubRepo      *string       `json:"github_repo,omitempty" db:"github_repo"`
	BuildCommand    *string       `json:"build_command,omitempty" db:"build_command"`
	OutputDirectory *string       `json:"output_directory,omitempty" db:"output_directory"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// ProjectUpdate carries optional field replacements. Domains, when present,
// replaces the whole ordered list. CustomerID is deliberately absent.
type ProjectUpdate struct {
	Name            *string        `json:"name,omitempty"`
	Description     *string        `json:"description,omitempty"`
	Status          *ProjectStatus `json:"status,omitempty"`
	LastDeployment  *time.Time     `json:"last_deployment,omitempty"`
	Domains         *StringSlice   `json:"domains,omitempty"`
	GithubRepo      *string        `json:"github_repo,omitempty"`
	BuildCommand    *string        `json:"build_command,omitempty"`
	OutputDirectory *string        `json:"output_directory,omitempty"`
}

// StringSlice is stored as a JSON-encoded text column. Order is preserved
// across the round trip; a NULL column scans as an empty slice.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		s = StringSlice{}
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("cannot scan %T into StringSlice", value)
}
