package core

import "github.com/shopspring/decimal"

// Summarize computes the dashboard totals and the per-type category splits.
// Category lists keep the order in which categories first appear.
func Summarize(txns []Transaction) Summary {
	income := newCategoryAccumulator()
	expense := newCategoryAccumulator()

	var s Summary
	for _, t := range txns {
		switch t.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			income.add(t.Category, t.Amount)
		case Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			expense.add(t.Category, t.Amount)
		}
	}

	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	s.ExpensePercent = expensePercent(s.TotalIncome, s.TotalExpense)
	s.IncomeByCategory = orEmpty(income.totals)
	s.ExpenseByCategory = orEmpty(expense.totals)
	s.TopIncomeCategory = income.top()
	s.TopExpenseCategory = expense.top()
	return s
}

// expensePercent is round(expense / income * 100), or 0 without income.
func expensePercent(income, expense Money) int64 {
	if income.Cents <= 0 {
		return 0
	}
	return decimal.NewFromInt(expense.Cents).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(income.Cents)).
		Round(0).
		IntPart()
}

func orEmpty(totals []CategoryTotal) []CategoryTotal {
	if totals == nil {
		return []CategoryTotal{}
	}
	return totals
}
