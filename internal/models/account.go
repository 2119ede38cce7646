package models

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account is the accounts table row. AccountCode is the user-facing primary key.
type Account struct {
	AccountCode string      `db:"account_code"`
	Name        string      `db:"name"`
	AccountType AccountType `db:"account_type"`
	Description string      `db:"description"`
	IsActive    bool        `db:"is_active"`
	AuditFields
}
