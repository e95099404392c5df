// AngelaMos | 2026
// dto.go

package lead

import (
	"time"
)

type SubscribeRequest struct {
	Email  string `json:"email"  validate:"required,email,max=254"`
	Source string `json:"source" validate:"omitempty,max=50"`
}

type CalculatorRequest struct {
	Name        string  `json:"name"         validate:"required,min=1,max=200"`
	Email       string  `json:"email"        validate:"required,email,max=254"`
	Phone       *string `json:"phone"        validate:"omitempty,max=50"`
	ProjectType *string `json:"project_type" validate:"omitempty,oneof=residential commercial renovation interior"`
	BudgetRange *string `json:"budget_range" validate:"omitempty,oneof=under_250k 250k_500k 500k_1m 1m_plus"`
}

type ContactRequest struct {
	Name    string `json:"name"    validate:"required,min=1,max=200"`
	Email   string `json:"email"   validate:"required,email,max=254"`
	Phone   string `json:"phone"   validate:"omitempty,max=50"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

type SubscribeResponse struct {
	Email      string    `json:"email"`
	Subscribed bool      `json:"subscribed"`
	Since      time.Time `json:"since"`
}

type CalculatorResponse struct {
	DownloadURL string    `json:"download_url"`
	FileName    string    `json:"file_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}
