package testutil

import (
	"time"

	"github.com/Veraticus/spice-ask/internal/model"
)

// Checking is an active depository account.
func Checking() model.Account {
	return model.Account{
		ID: "checking", Name: "Everyday Checking", Type: model.AccountTypeDepository,
		InstitutionName: "First Bank", Balance: 3200, IsActive: true,
	}
}

// Brokerage is an active investment account.
func Brokerage() model.Account {
	return model.Account{
		ID: "brokerage", Name: "Fidelity Brokerage", Type: model.AccountTypeInvestment,
		InstitutionName: "Fidelity", IsActive: true,
	}
}

// CreditCard is an active credit account carrying a balance.
func CreditCard() model.Account {
	return model.Account{
		ID: "credit", Name: "Sapphire Card", Type: model.AccountTypeCredit,
		InstitutionName: "Chase", Balance: 450, IsActive: true,
	}
}

// Accounts returns the standard account set.
func Accounts() []model.Account {
	return []model.Account{Checking(), Brokerage(), CreditCard()}
}

// Holdings returns brokerage positions as of asOf.
func Holdings(asOf time.Time) []model.Holding {
	return []model.Holding{
		{AccountID: "brokerage", AsOf: asOf, SecurityID: "sec-vti", Ticker: "VTI", Name: "Vanguard Total Stock Market ETF",
			SecurityType: "etf", Quantity: 40, Price: 250, Value: 10000, CostBasis: 8000},
		{AccountID: "brokerage", AsOf: asOf, SecurityID: "sec-bnd", Ticker: "BND", Name: "Vanguard Total Bond Market ETF",
			SecurityType: "etf", Quantity: 50, Price: 72, Value: 3600, CostBasis: 3700},
		{AccountID: "brokerage", AsOf: asOf, SecurityID: "sec-aapl", Ticker: "AAPL", Name: "Apple Inc.",
			SecurityType: "equity", Quantity: 10, Price: 240, Value: 2400, CostBasis: 1500},
	}
}
