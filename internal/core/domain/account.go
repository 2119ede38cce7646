package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents one node of the chart of accounts. Entries reference
// accounts by code; only active accounts may be used on new entry lines.
type Account struct {
	AccountCode string      `json:"accountCode"` // Primary Key, user-facing code (e.g., "1010")
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	Description string      `json:"description"` // Nullable user description
	IsActive    bool        `json:"isActive"`
	AuditFields
}
