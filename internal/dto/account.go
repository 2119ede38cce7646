package dto

import (
	"time"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
)

// CreateAccountRequest is the payload for adding an account to the chart.
type CreateAccountRequest struct {
	AccountCode string `json:"accountCode" binding:"required"`
	Name        string `json:"name" binding:"required"`
	AccountType string `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Description string `json:"description"`
}

// UpdateAccountRequest is the payload for editing an account's mutable fields.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountCode string    `json:"accountCode"`
	Name        string    `json:"name"`
	AccountType string    `json:"accountType"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountCode: a.AccountCode,
		Name:        a.Name,
		AccountType: string(a.AccountType),
		Description: a.Description,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
	}
}

// ToAccountResponses converts a slice of domain accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
