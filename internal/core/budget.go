package core

import "fmt"

// Outcome is the advisory result of checking an expense against its budget.
type Outcome struct {
	Exceeded bool  `json:"exceeded"`
	Overage  Money `json:"overage"`
}

// Warning renders the message shown to the user when a budget is exceeded.
// It returns an empty string otherwise.
func (o Outcome) Warning(category string) string {
	if !o.Exceeded {
		return ""
	}
	return fmt.Sprintf("Warning: Budget for '%s' exceeded by %s", category, o.Overage)
}

// EvaluateBudget decides whether the month's expenses push spending over
// budget. monthExpenses is expected to already contain newExpense together
// with every other expense of the same category and month. A nil budget is
// never exceeded. Inputs are not modified.
func EvaluateBudget(newExpense Transaction, budget *Budget, monthExpenses []Transaction) Outcome {
	if budget == nil || !newExpense.IsExpense() {
		return Outcome{}
	}

	var spent Money
	for _, t := range monthExpenses {
		spent = spent.Add(t.Amount)
	}

	if spent.Cents <= budget.Amount.Cents {
		return Outcome{}
	}
	return Outcome{Exceeded: true, Overage: spent.Sub(budget.Amount)}
}

// MonthSpan returns the first and last calendar day of a YYYY-MM month.
func MonthSpan(month string) (first, last Date, err error) {
	first, err = ParseMonth(month)
	if err != nil {
		return Date{}, Date{}, err
	}
	last = Date{Time: first.AddDate(0, 1, -1)}
	return first, last, nil
}

// BudgetProgress reports how much of each budget has been spent. Expenses
// count toward a budget when their category matches exactly and they fall
// in the budget's month.
func BudgetProgress(budgets []Budget, monthExpenses []Transaction) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		var spent Money
		for _, t := range monthExpenses {
			if t.IsExpense() && t.Category == b.Category && t.Date.MonthKey() == b.Month {
				spent = spent.Add(t.Amount)
			}
		}
		out = append(out, BudgetStatus{
			Budget:    b,
			Spent:     spent,
			Remaining: b.Amount.Sub(spent),
			Exceeded:  spent.Cents > b.Amount.Cents,
		})
	}
	return out
}
