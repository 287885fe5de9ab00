package derive

import (
	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/enum"
	"github.com/darzibook/api/internal/model"
)

// Balance computes the ledger's running balance, sum(Income) - sum(Expense),
// at read time. Entries with any other type are ignored.
func Balance(transactions []model.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range transactions {
		switch tx.Type {
		case enum.TransactionIncome:
			balance = balance.Add(tx.Amount)
		case enum.TransactionExpense:
			balance = balance.Sub(tx.Amount)
		}
	}
	return balance
}
