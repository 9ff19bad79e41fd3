package model

import "time"

// AccountType is the broad class of a financial account.
type AccountType string

const (
	// AccountTypeDepository covers checking and savings accounts.
	AccountTypeDepository AccountType = "depository"
	// AccountTypeInvestment covers brokerage and retirement accounts.
	AccountTypeInvestment AccountType = "investment"
	// AccountTypeCredit covers credit cards.
	AccountTypeCredit AccountType = "credit"
	// AccountTypeLoan covers mortgages and other loans.
	AccountTypeLoan AccountType = "loan"
)

// IsLiability reports whether balances of this type are owed rather than owned.
func (t AccountType) IsLiability() bool {
	return t == AccountTypeCredit || t == AccountTypeLoan
}

// Account is a financial account at an institution.
type Account struct {
	CreatedAt       time.Time
	ID              string
	Name            string
	OfficialName    string
	Type            AccountType
	Subtype         string
	InstitutionName string
	Mask            string
	Balance         float64
	IsActive        bool
}

// Holding is one security position inside an investment account, as of a date.
type Holding struct {
	AsOf         time.Time
	AccountID    string
	SecurityID   string
	Name         string
	Ticker       string
	SecurityType string
	Quantity     float64
	Price        float64
	Value        float64
	CostBasis    float64
}

// NetWorthSnapshot is a daily record of total net worth.
type NetWorthSnapshot struct {
	Date             time.Time
	TotalAssets      float64
	TotalLiabilities float64
	NetWorth         float64
	InvestmentValue  float64
	CashValue        float64
	AccountCount     int
}

// Key identifies the security a holding refers to: the security id when
// known, else the ticker, else the name.
func (h *Holding) Key() string {
	switch {
	case h.SecurityID != "":
		return h.SecurityID
	case h.Ticker != "":
		return h.Ticker
	default:
		return h.Name
	}
}
