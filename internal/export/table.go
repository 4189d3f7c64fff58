package export

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"tracker/internal/core"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

// TransactionsTable prints one row per transaction.
func TransactionsTable(w io.Writer, txns []core.Transaction) {
	table := newTable(w, "ID", "Date", "Type", "Category", "Amount", "Notes")
	table.SetFooter([]string{"", "", "", "Rows", strconv.Itoa(len(txns)), ""})
	for _, t := range txns {
		table.Append([]string{
			strconv.FormatInt(t.ID, 10),
			t.Date.String(),
			string(t.Type),
			t.Category,
			t.Amount.String(),
			t.Notes,
		})
	}
	table.Render()
}

// AnalyticsTables prints the monthly series, category totals and insights.
func AnalyticsTables(w io.Writer, a core.Analytics) {
	monthly := newTable(w, "Month", "Income", "Expense", "Savings")
	for _, b := range a.Monthly {
		monthly.Append([]string{b.Month, b.Income.String(), b.Expense.String(), b.Savings.String()})
	}
	monthly.Render()

	categories := newTable(w, "Category", "Total")
	for _, c := range a.CategoryTotals {
		categories.Append([]string{c.Category, c.Total.String()})
	}
	categories.Render()

	insights := newTable(w, "Insight", "Value")
	insights.AppendBulk([][]string{
		{"Top category", a.Insights.TopCategory},
		{"Average savings", a.Insights.AvgSavings.String()},
		{"Most active day", a.Insights.MostActiveDay},
		{"Best month", a.Insights.BestMonth},
	})
	insights.Render()
}

// BudgetTable prints spending against each budget.
func BudgetTable(w io.Writer, statuses []core.BudgetStatus) {
	table := newTable(w, "Category", "Month", "Budget", "Spent", "Remaining", "Status")
	for _, s := range statuses {
		status := "ok"
		if s.Exceeded {
			status = "EXCEEDED"
		}
		table.Append([]string{
			s.Budget.Category,
			s.Budget.Month,
			s.Budget.Amount.String(),
			s.Spent.String(),
			s.Remaining.String(),
			status,
		})
	}
	table.Render()
}
