package core

import "time"

type PlanType string

const (
	PlanStarter  PlanType = "starter"
	PlanBasic    PlanType = "basic"
	PlanAdvanced PlanType = "advanced"
)

// Customer is the owning identity for projects. Every CRUD and deploy
// operation is isolated by customer id.
type Customer struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	PlanType  PlanType  `json:"plan_type" db:"plan_type"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	GithubID  *string   `json:"github_id,omitempty" db:"github_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerUpdate carries optional field replacements. Nil means "leave as is".
type CustomerUpdate struct {
	Name      *string   `json:"name,omitempty"`
	Email     *string   `json:"email,omitempty"`
	PlanType  *PlanType `json:"plan_type,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	GithubID  *string   `json:"github_id,omitempty"`
}
