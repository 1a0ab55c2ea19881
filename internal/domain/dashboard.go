package domain

import "github.com/shopspring/decimal"

// ReportSummary holds the income/expense totals for one month name
type ReportSummary struct {
	Month         string          `json:"month"`
	TotalIncome   decimal.Decimal `json:"totalIncome" swaggertype:"string"`
	TotalExpenses decimal.Decimal `json:"totalExpenses" swaggertype:"string"`
	NetTotal      decimal.Decimal `json:"netTotal" swaggertype:"string"`
}

// DashboardSummary is everything the dashboard page renders for a user
type DashboardSummary struct {
	SelectedMonth         string          `json:"selectedMonth"`
	CategoryTotals        []CategoryTotal `json:"categoryTotals"`
	MonthlyTotals         []MonthTotal    `json:"monthlyTotals"`
	Budget                decimal.Decimal `json:"budget" swaggertype:"string"`
	BudgetUsagePercentage decimal.Decimal `json:"budgetUsagePercentage" swaggertype:"string"`
	MonthIncome           decimal.Decimal `json:"monthIncome" swaggertype:"string"`
	MonthExpenses         decimal.Decimal `json:"monthExpenses" swaggertype:"string"`
	RecentTransactions    []*Transaction  `json:"recentTransactions"`
	AvailableMonths       []string        `json:"availableMonths"`
	Categories            []string        `json:"categories"`
}
