package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/finance"
)

type financeRepository struct {
	db *financeTable
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(db *DB) *financeRepository {
	return &financeRepository{db: db.finance}
}

// InitBalance seeds the singleton school balance row; tests and the admin CLI
// use it in place of the SQL migration seed.
func (repo *financeRepository) InitBalance(amount decimal.Decimal) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.balance = finance.Balance{Amount: amount, UpdatedAt: time.Now().UTC()}
	repo.db.initialized = true
}

func (repo *financeRepository) GetBalance(_ context.Context) (finance.Balance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if !repo.db.initialized {
		return finance.Balance{}, finance.ErrBalanceNotFound
	}
	return repo.db.balance, nil
}

// MakePayment holds the table lock for the whole debit+append so concurrent
// payments can never validate against a stale balance.
func (repo *financeRepository) MakePayment(_ context.Context, txn finance.Transaction) (finance.Transaction, finance.Balance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if !repo.db.initialized {
		return finance.Transaction{}, finance.Balance{}, finance.ErrBalanceNotFound
	}

	newAmount := repo.db.balance.Amount.Sub(txn.Amount)
	if newAmount.IsNegative() {
		return finance.Transaction{}, finance.Balance{}, finance.ErrInsufficientFunds
	}

	txn.ID = uuid.New().String()
	txn.Date = time.Now().UTC()
	repo.db.balance = finance.Balance{Amount: newAmount, UpdatedAt: txn.Date}
	repo.db.transactions = append(repo.db.transactions, txn)
	return txn, repo.db.balance, nil
}

func (repo *financeRepository) FilterTransactions(_ context.Context, filter *finance.QueryFilter, ordering []core.DBOrdering) ([]finance.Transaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	txns := make([]finance.Transaction, 0, len(repo.db.transactions))
	for _, txn := range repo.db.transactions {
		if filter != nil && filter.RecipientID != "" && txn.RecipientID != filter.RecipientID {
			continue
		}
		txns = append(txns, txn)
	}

	ascending := false
	for _, ord := range ordering {
		if ord.Field == "date" {
			ascending = ord.Ascending
		}
	}
	sort.SliceStable(txns, func(i, j int) bool {
		if ascending {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].Date.After(txns[j].Date)
	})
	return txns, nil
}
