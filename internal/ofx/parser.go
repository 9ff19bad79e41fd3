// Package ofx imports bank and credit card statements from OFX/QFX files.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/aclindsa/ofxgo"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// An opening tag at end of line with no closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Statement is everything one OFX file describes.
type Statement struct {
	Accounts     []model.Account
	Transactions []model.Transaction
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file into its accounts and transactions.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{}
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		bank, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		bankStmts++

		accountID := string(bank.BankAcctFrom.AcctID)
		balance, _ := bank.BalAmt.Float64()
		stmt.Accounts = append(stmt.Accounts, model.Account{
			ID:       accountID,
			Name:     accountName(bank.BankAcctFrom.AcctType.String(), accountID),
			Type:     model.AccountTypeDepository,
			Mask:     mask(accountID),
			Balance:  balance,
			IsActive: true,
		})
		if bank.BankTranList != nil {
			for _, ofxTx := range bank.BankTranList.Transactions {
				stmt.Transactions = append(stmt.Transactions, p.convertTransaction(ofxTx, accountID))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		cc, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		ccStmts++

		accountID := string(cc.CCAcctFrom.AcctID)
		balance, _ := cc.BalAmt.Float64()
		if balance < 0 {
			balance = -balance
		}
		stmt.Accounts = append(stmt.Accounts, model.Account{
			ID:       accountID,
			Name:     accountName("Credit Card", accountID),
			Type:     model.AccountTypeCredit,
			Mask:     mask(accountID),
			Balance:  balance,
			IsActive: true,
		})
		if cc.BankTranList != nil {
			for _, ofxTx := range cc.BankTranList.Transactions {
				stmt.Transactions = append(stmt.Transactions, p.convertTransaction(ofxTx, accountID))
			}
		}
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(stmt.Transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return stmt, nil
}

// convertTransaction converts an OFX transaction to our model. OFX amounts
// are already signed with debits negative.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()
	posted := ofxTx.DtPosted.Time
	trnType := strings.ToUpper(ofxTx.TrnType.String())

	tx := model.Transaction{
		ID:           string(ofxTx.FiTID),
		Date:         time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
		PostedAt:     timeOfDay(posted),
		Name:         strings.TrimSpace(string(ofxTx.Name)),
		MerchantName: p.extractMerchantName(ofxTx),
		Amount:       amount,
		AccountID:    accountID,
	}

	switch {
	case trnType == "DIV":
		tx.Type = model.TypeDividend
		tx.IncomeType = model.TypeDividend
		tx.IsIncome = true
	case trnType == "XFER":
		tx.Type = model.TypeTransfer
	case amount < 0:
		tx.Type = model.TypeExpense
		tx.IsExpense = true
	default:
		tx.Type = model.TypeIncome
		tx.IsIncome = true
		tx.IncomeType = incomeType(trnType)
	}

	switch trnType {
	case "FEE", "SRVCHG":
		tx.ExpenseCategory = "bank fees"
	case "ATM":
		tx.ExpenseCategory = "cash"
	}

	tx.Hash = tx.GenerateHash()
	return tx
}

// timeOfDay returns the posting time when the file carries a real one.
// Midnight and exactly noon are the placeholders banks write when they only
// know the date.
func timeOfDay(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	h, m, sec := t.Clock()
	if m == 0 && sec == 0 && (h == 0 || h == 12) {
		return nil
	}
	return &t
}

func incomeType(trnType string) string {
	switch trnType {
	case "INT":
		return "interest"
	case "DIRECTDEP":
		return "salary"
	default:
		return "other"
	}
}

func accountName(kind, accountID string) string {
	kind = strings.TrimSpace(kind)
	if kind == "" || strings.HasPrefix(kind, "invalid") {
		kind = "Account"
	}
	kind = strings.ToUpper(kind[:1]) + strings.ToLower(kind[1:])
	return fmt.Sprintf("%s ...%s", kind, mask(accountID))
}

func mask(accountID string) string {
	if len(accountID) <= 4 {
		return accountID
	}
	return accountID[len(accountID)-4:]
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " left behind by "PURCHASE AUTHORIZED ON".
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
