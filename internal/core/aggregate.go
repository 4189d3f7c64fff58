package core

import (
	"sort"
)

// monthAccumulator keeps buckets in first-seen order with an index for lookups.
type monthAccumulator struct {
	index   map[string]int
	buckets []MonthlyBucket
}

func (a *monthAccumulator) add(t Transaction) {
	key := t.Date.MonthKey()
	i, ok := a.index[key]
	if !ok {
		i = len(a.buckets)
		a.index[key] = i
		a.buckets = append(a.buckets, MonthlyBucket{Month: key})
	}
	b := &a.buckets[i]
	switch t.Type {
	case Income:
		b.Income = b.Income.Add(t.Amount)
	case Expense:
		b.Expense = b.Expense.Add(t.Amount)
	}
	b.Savings = b.Income.Sub(b.Expense)
}

// categoryAccumulator sums amounts per category keeping first-seen order.
type categoryAccumulator struct {
	index  map[string]int
	totals []CategoryTotal
}

func newCategoryAccumulator() *categoryAccumulator {
	return &categoryAccumulator{index: make(map[string]int)}
}

func (a *categoryAccumulator) add(category string, amount Money) {
	i, ok := a.index[category]
	if !ok {
		i = len(a.totals)
		a.index[category] = i
		a.totals = append(a.totals, CategoryTotal{Category: category})
	}
	a.totals[i].Total = a.totals[i].Total.Add(amount)
}

// top returns the category with the highest total. Ties go to the category
// seen first.
func (a *categoryAccumulator) top() string {
	best := -1
	for i, ct := range a.totals {
		if best < 0 || ct.Total.Cents > a.totals[best].Total.Cents {
			best = i
		}
	}
	if best < 0 {
		return NotAvailable
	}
	return a.totals[best].Category
}

// Aggregate derives the monthly series, expense totals per category and the
// headline insights from a transaction list. It never fails: an empty list
// yields empty series and "N/A" insights.
func Aggregate(txns []Transaction) Analytics {
	months := &monthAccumulator{index: make(map[string]int)}
	categories := newCategoryAccumulator()

	dayIndex := make(map[string]int)
	var days []string
	var dayCounts []int

	for _, t := range txns {
		months.add(t)
		if t.Type == Expense {
			categories.add(t.Category, t.Amount)
		}

		day := t.Date.String()
		i, ok := dayIndex[day]
		if !ok {
			i = len(days)
			dayIndex[day] = i
			days = append(days, day)
			dayCounts = append(dayCounts, 0)
		}
		dayCounts[i]++
	}

	monthly := months.buckets
	if monthly == nil {
		monthly = []MonthlyBucket{}
	}
	sort.SliceStable(monthly, func(i, j int) bool {
		return monthly[i].Month < monthly[j].Month
	})

	totals := orEmpty(categories.totals)
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.Cents > totals[j].Total.Cents
	})

	insights := Insights{
		TopCategory:   NotAvailable,
		MostActiveDay: NotAvailable,
		BestMonth:     NotAvailable,
	}
	if len(totals) > 0 {
		insights.TopCategory = totals[0].Category
	}

	savings := make([]int64, 0, len(monthly))
	bestMonth := -1
	for i, b := range monthly {
		savings = append(savings, b.Savings.Cents)
		if bestMonth < 0 || b.Savings.Cents > monthly[bestMonth].Savings.Cents {
			bestMonth = i
		}
	}
	if bestMonth >= 0 {
		insights.BestMonth = monthly[bestMonth].Month
	}
	insights.AvgSavings = Money{Cents: meanCents(savings)}

	best := -1
	for i, c := range dayCounts {
		if best < 0 || c > dayCounts[best] {
			best = i
		}
	}
	if best >= 0 {
		insights.MostActiveDay = days[best]
	}

	return Analytics{
		Monthly:        monthly,
		CategoryTotals: totals,
		Insights:       insights,
	}
}
