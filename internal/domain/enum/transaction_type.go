package enum

// TransactionType classifies a ledger row.
type TransactionType string

const (
	TransactionSale       TransactionType = "sale"
	TransactionExpense    TransactionType = "expense"
	TransactionInvestment TransactionType = "investment"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionSale, TransactionExpense, TransactionInvestment:
		return true
	}
	return false
}

func (t TransactionType) String() string {
	return string(t)
}
