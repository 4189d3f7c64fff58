package core

// MonthlyBucket is the income/expense balance of one calendar month.
type MonthlyBucket struct {
	Month   string `json:"month"`
	Income  Money  `json:"income"`
	Expense Money  `json:"expense"`
	Savings Money  `json:"savings"`
}

// CategoryTotal represents an amount aggregated by category name.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    Money  `json:"total"`
}

type Insights struct {
	TopCategory   string `json:"topCategory"`
	AvgSavings    Money  `json:"avgSavings"`
	MostActiveDay string `json:"mostActiveDay"`
	BestMonth     string `json:"bestMonth"`
}

// Analytics is the full output of Aggregate.
type Analytics struct {
	Monthly        []MonthlyBucket `json:"monthly"`
	CategoryTotals []CategoryTotal `json:"categoryTotals"`
	Insights       Insights        `json:"insights"`
}

// Summary is the dashboard view of a transaction set.
type Summary struct {
	TotalIncome        Money           `json:"totalIncome"`
	TotalExpense       Money           `json:"totalExpense"`
	Balance            Money           `json:"balance"`
	ExpensePercent     int64           `json:"expensePercent"`
	IncomeByCategory   []CategoryTotal `json:"incomeByCategory"`
	ExpenseByCategory  []CategoryTotal `json:"expenseByCategory"`
	TopIncomeCategory  string          `json:"topIncomeCategory"`
	TopExpenseCategory string          `json:"topExpenseCategory"`
}

// BudgetStatus pairs a budget with what has been spent against it.
type BudgetStatus struct {
	Budget    Budget `json:"budget"`
	Spent     Money  `json:"spent"`
	Remaining Money  `json:"remaining"`
	Exceeded  bool   `json:"exceeded"`
}
