package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spice-ask/internal/dispatch"
	"github.com/Veraticus/spice-ask/internal/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Renderer prints query responses for a terminal.
type Renderer struct {
	w io.Writer
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render writes resp as styled text.
func (r *Renderer) Render(resp *dispatch.Response) error {
	var b strings.Builder

	b.WriteString(FormatTitle(title(resp)))
	b.WriteString("\n")
	if resp.Range != nil {
		b.WriteString(SubtleStyle.Render(formatRange(resp)))
		b.WriteString("\n\n")
	}

	switch p := resp.Payload.(type) {
	case dispatch.NetWorthPayload:
		renderNetWorth(&b, p)
	case dispatch.NetWorthHistoryPayload:
		renderNetWorthHistory(&b, p)
	case dispatch.PerformancePayload:
		renderPerformance(&b, p)
	case dispatch.AllocationPayload:
		renderAllocation(&b, p)
	case dispatch.HoldingsPayload:
		b.WriteString(slicesTable(p.Holdings))
		b.WriteString("\n")
	case dispatch.TransactionsPayload:
		writeKV(&b, "Total", formatMoney(p.Total))
		writeKV(&b, "Count", strconv.Itoa(p.Count))
		b.WriteString(transactionsTable(p.Transactions))
		b.WriteString("\n")
	case dispatch.IncomePayload:
		writeKV(&b, "Total income", formatMoney(p.TotalIncome))
		writeKV(&b, "Transactions", strconv.Itoa(p.TransactionCount))
		b.WriteString(groupsTable("Type", p.ByType))
		b.WriteString("\n")
	case dispatch.ExpensesPayload:
		writeKV(&b, "Total expenses", formatMoney(p.TotalExpenses))
		writeKV(&b, "Transactions", strconv.Itoa(p.TransactionCount))
		b.WriteString(groupsTable("Category", p.ByCategory))
		b.WriteString("\n")
	case dispatch.SpendingPayload:
		writeKV(&b, "Total", formatMoney(p.Total))
		writeKV(&b, "Count", strconv.Itoa(p.Count))
		if len(p.Transactions) > 0 {
			b.WriteString(transactionsTable(p.Transactions))
			b.WriteString("\n")
		}
	case dispatch.CashFlowPayload:
		renderCashFlow(&b, p)
	case dispatch.LunchPayload:
		renderLunch(&b, p)
	case dispatch.UnknownPayload:
		renderUnknown(&b, p)
	default:
		return fmt.Errorf("unsupported payload %T", resp.Payload)
	}

	_, err := fmt.Fprint(r.w, b.String())
	return err
}

// RenderJSON writes resp as indented JSON.
func RenderJSON(w io.Writer, resp *dispatch.Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func title(resp *dispatch.Response) string {
	name := strings.ReplaceAll(resp.Intent.String(), "_", " ")
	name = strings.ToUpper(name[:1]) + name[1:]
	if resp.Subject != "" {
		name += ": " + resp.Subject
	}
	return name
}

func formatRange(resp *dispatch.Response) string {
	s := resp.Range.Start.Format(time.DateOnly) + " to " + resp.Range.End.Format(time.DateOnly)
	if v, ok := resp.Extra["default_range"].(bool); ok && v {
		s += " (default)"
	}
	return s
}

func renderNetWorth(b *strings.Builder, p dispatch.NetWorthPayload) {
	writeKV(b, "Net worth", BoldStyle.Render(formatMoney(p.NetWorth)))
	writeKV(b, "Assets", formatMoney(p.TotalAssets))
	writeKV(b, "Liabilities", formatMoney(p.TotalLiabilities))
	writeKV(b, "Investments", formatMoney(p.InvestmentValue))
	writeKV(b, "Cash", formatMoney(p.CashValue))

	rows := make([][]string, 0, len(p.Accounts))
	for _, a := range p.Accounts {
		rows = append(rows, []string{a.AccountName, string(a.AccountType), formatMoney(a.Value)})
	}
	if len(rows) > 0 {
		b.WriteString("\n")
		b.WriteString(newTable([]string{"Account", "Type", "Value"}, rows))
		b.WriteString("\n")
	}
}

func renderNetWorthHistory(b *strings.Builder, p dispatch.NetWorthHistoryPayload) {
	if len(p.Snapshots) == 0 {
		b.WriteString(FormatInfo("No snapshots in range. Record one with: spice snapshot"))
		b.WriteString("\n")
		return
	}
	rows := make([][]string, 0, len(p.Snapshots))
	for _, s := range p.Snapshots {
		rows = append(rows, []string{
			s.Date.Format(time.DateOnly),
			formatFloat(s.NetWorth),
			formatFloat(s.TotalAssets),
			formatFloat(s.TotalLiabilities),
		})
	}
	b.WriteString(newTable([]string{"Date", "Net worth", "Assets", "Liabilities"}, rows))
	b.WriteString("\n")
}

func renderPerformance(b *strings.Builder, p dispatch.PerformancePayload) {
	s := p.Summary
	writeKV(b, "Start", formatMoney(s.StartValue))
	writeKV(b, "End", formatMoney(s.EndValue))
	writeKV(b, "Return", styleSigned(s.AbsoluteReturn, formatMoney(s.AbsoluteReturn)+" ("+formatPercent(s.PercentReturn)+")"))
	writeKV(b, "Annualized", formatPercent(s.AnnualizedReturn))

	if len(p.Monthly) == 0 {
		return
	}
	rows := make([][]string, 0, len(p.Monthly))
	for _, m := range p.Monthly {
		rows = append(rows, []string{m.Month, formatMoney(m.StartValue), formatMoney(m.EndValue), formatMoney(m.Return), formatPercent(m.ReturnPercent)})
	}
	b.WriteString("\n")
	b.WriteString(newTable([]string{"Month", "Start", "End", "Return", "%"}, rows))
	b.WriteString("\n")
}

func renderAllocation(b *strings.Builder, p dispatch.AllocationPayload) {
	writeKV(b, "Total", formatMoney(p.TotalValue))
	for _, section := range []struct {
		name   string
		slices []service.AllocationSlice
	}{
		{"By security", p.BySecurity},
		{"By type", p.ByType},
		{"By account", p.ByAccount},
	} {
		if len(section.slices) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(BoldStyle.Render(section.name))
		b.WriteString("\n")
		b.WriteString(slicesTable(section.slices))
		b.WriteString("\n")
	}
}

func renderCashFlow(b *strings.Builder, p dispatch.CashFlowPayload) {
	writeKV(b, "Income", formatMoney(p.Income))
	writeKV(b, "Expenses", formatMoney(p.Expenses))
	writeKV(b, "Net", styleSigned(p.Net, formatMoney(p.Net)))
	if len(p.IncomeBreakdown) > 0 {
		b.WriteString("\n")
		b.WriteString(groupsTable("Income type", p.IncomeBreakdown))
		b.WriteString("\n")
	}
	if len(p.ExpenseBreakdown) > 0 {
		b.WriteString("\n")
		b.WriteString(groupsTable("Top categories", p.ExpenseBreakdown))
		b.WriteString("\n")
	}
}

func renderLunch(b *strings.Builder, p dispatch.LunchPayload) {
	writeKV(b, "Lunch total", BoldStyle.Render(formatMoney(p.Accepted.Total)))
	writeKV(b, "Purchases", strconv.Itoa(p.Accepted.Count))
	renderLunchBucket(b, p.Accepted)

	if p.Uncertain.Count == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(FormatWarning(fmt.Sprintf("%d uncertain purchases totaling %s", p.Uncertain.Count, formatMoney(p.Uncertain.Total))))
	b.WriteString("\n")
	renderLunchBucket(b, p.Uncertain)
}

func renderLunchBucket(b *strings.Builder, bucket dispatch.LunchBucket) {
	if len(bucket.Merchants) > 0 {
		rows := make([][]string, 0, len(bucket.Merchants))
		for _, m := range bucket.Merchants {
			rows = append(rows, []string{m.Merchant, strconv.Itoa(m.Count), formatMoney(m.Total), m.AverageConfidence.StringFixed(1)})
		}
		b.WriteString("\n")
		b.WriteString(newTable([]string{"Merchant", "Count", "Total", "Avg confidence"}, rows))
		b.WriteString("\n")
	}

	if len(bucket.Transactions) > 0 {
		rows := make([][]string, 0, len(bucket.Transactions))
		for _, t := range bucket.Transactions {
			rows = append(rows, []string{
				t.Date, t.Time, t.Merchant, formatMoney(t.Amount),
				strconv.Itoa(t.Confidence), strings.Join(t.Reasons, "; "),
			})
		}
		b.WriteString("\n")
		b.WriteString(newTable([]string{"Date", "Time", "Merchant", "Amount", "Score", "Why"}, rows))
		b.WriteString("\n")
	}
}

func renderUnknown(b *strings.Builder, p dispatch.UnknownPayload) {
	b.WriteString(FormatWarning(fmt.Sprintf("%s: %q", p.Message, p.Query)))
	b.WriteString("\n\n")
	b.WriteString(SubtitleStyle.Render("Try one of these:"))
	b.WriteString("\n")
	for _, s := range p.Suggestions {
		b.WriteString("  " + InfoStyle.Render(s) + "\n")
	}
}

func transactionsTable(txns []dispatch.TransactionView) string {
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []string{t.Date, t.Merchant, t.Category, formatMoney(t.Amount)})
	}
	return newTable([]string{"Date", "Merchant", "Category", "Amount"}, rows)
}

func slicesTable(items []service.AllocationSlice) string {
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		rows = append(rows, []string{s.Label, s.Ticker, formatMoney(s.Value), formatPercent(s.Percent)})
	}
	return newTable([]string{"Name", "Ticker", "Value", "Allocation"}, rows)
}

func groupsTable(heading string, groups []service.GroupTotal) string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Name, strconv.Itoa(g.Count), formatMoney(g.Total)})
	}
	return newTable([]string{heading, "Count", "Total"}, rows)
}

func newTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return BoldStyle.Foreground(PrimaryColor).PaddingRight(1).PaddingLeft(1)
			}
			return TableCellStyle
		}).
		String()
}

func writeKV(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%s %s\n", SubtleStyle.Render(key+":"), value)
}

func styleSigned(d decimal.Decimal, s string) string {
	if d.IsNegative() {
		return ErrorStyle.Render(s)
	}
	return SuccessStyle.Render(s)
}

// formatMoney renders d as dollars with thousands separators.
func formatMoney(d decimal.Decimal) string {
	return formatFloat(d.InexactFloat64())
}

func formatFloat(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func formatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}
