// AngelaMos | 2026
// dto.go

package client

import (
	"time"
)

type CreateClientRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name"  validate:"required,max=100"`
	Email     string  `json:"email"      validate:"required,email,max=255"`
	Company   *string `json:"company"    validate:"omitempty,max=200"`
	Phone     *string `json:"phone"      validate:"omitempty,max=40"`
	Tier      string  `json:"tier"       validate:"required,oneof=basic standard premium"`
}

type UpdateClientRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,min=1,max=100"`
	Email     *string `json:"email"      validate:"omitempty,email,max=255"`
	Company   *string `json:"company"    validate:"omitempty,max=200"`
	Phone     *string `json:"phone"      validate:"omitempty,max=40"`
	Tier      *string `json:"tier"       validate:"omitempty,oneof=basic standard premium"`
}

type ClientResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company"`
	Phone     *string   `json:"phone"`
	Tier      string    `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Tier     string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToResponse(c *Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Company:   c.Company,
		Phone:     c.Phone,
		Tier:      c.Tier,
		CreatedAt: c.CreatedAt,
	}
}

func ToResponseList(clients []Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, ToResponse(&clients[i]))
	}
	return out
}
