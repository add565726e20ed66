package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/finance"
)

type balanceRow struct {
	Balance   decimal.Decimal `db:"balance"`
	UpdatedAt time.Time       `db:"updated_at"`
}

type transactionRow struct {
	ID          string          `db:"id"`
	RecipientID string          `db:"recipient_id"`
	Amount      decimal.Decimal `db:"amount"`
	Type        string          `db:"type"`
	Date        time.Time       `db:"date"`
}

func (r transactionRow) toDomain() finance.Transaction {
	return finance.Transaction{
		ID:          r.ID,
		RecipientID: r.RecipientID,
		Amount:      r.Amount,
		Type:        finance.ParsePaymentType(r.Type),
		Date:        r.Date,
	}
}

type financeRepository struct {
	db *sqlx.DB
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(db *sqlx.DB) *financeRepository {
	return &financeRepository{db: db}
}

func (repo *financeRepository) GetBalance(ctx context.Context) (finance.Balance, error) {
	var row balanceRow
	if err := repo.db.GetContext(ctx, &row, `SELECT balance, updated_at FROM school_finances WHERE id = 1`); err != nil {
		if err == sql.ErrNoRows {
			return finance.Balance{}, finance.ErrBalanceNotFound
		}
		return finance.Balance{}, errors.Wrap(err, "getting school balance")
	}
	return finance.Balance{Amount: row.Balance, UpdatedAt: row.UpdatedAt}, nil
}

// MakePayment runs the debit and the ledger append inside one transaction with
// the balance row locked (SELECT ... FOR UPDATE), so two concurrent payments
// can never both validate against the same stale balance.
func (repo *financeRepository) MakePayment(ctx context.Context, txn finance.Transaction) (finance.Transaction, finance.Balance, error) {
	dbTx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return finance.Transaction{}, finance.Balance{}, errors.Wrap(err, "beginning payment transaction")
	}
	defer func() { _ = dbTx.Rollback() }()

	var row balanceRow
	if err = dbTx.GetContext(ctx, &row, `SELECT balance, updated_at FROM school_finances WHERE id = 1 FOR UPDATE`); err != nil {
		if err == sql.ErrNoRows {
			return finance.Transaction{}, finance.Balance{}, finance.ErrBalanceNotFound
		}
		return finance.Transaction{}, finance.Balance{}, errors.Wrap(err, "locking school balance")
	}

	newBalance := row.Balance.Sub(txn.Amount)
	if newBalance.IsNegative() {
		return finance.Transaction{}, finance.Balance{}, finance.ErrInsufficientFunds
	}

	txn.ID = uuid.New().String()
	txn.Date = time.Now().UTC()

	if _, err = dbTx.ExecContext(ctx,
		`UPDATE school_finances SET balance = $1, updated_at = $2 WHERE id = 1`,
		newBalance, txn.Date,
	); err != nil {
		return finance.Transaction{}, finance.Balance{}, errors.Wrap(err, "debiting school balance")
	}

	if _, err = dbTx.ExecContext(ctx,
		`INSERT INTO transactions (id, recipient_id, amount, type, date) VALUES ($1, $2, $3, $4, $5)`,
		txn.ID, txn.RecipientID, txn.Amount, txn.Type.String(), txn.Date,
	); err != nil {
		return finance.Transaction{}, finance.Balance{}, errors.Wrap(err, "appending transaction")
	}

	if err = dbTx.Commit(); err != nil {
		return finance.Transaction{}, finance.Balance{}, errors.Wrap(err, "committing payment transaction")
	}
	return txn, finance.Balance{Amount: newBalance, UpdatedAt: txn.Date}, nil
}

func (repo *financeRepository) FilterTransactions(ctx context.Context, filter *finance.QueryFilter, ordering []core.DBOrdering) ([]finance.Transaction, error) {
	query := `SELECT id, recipient_id, amount, type, date FROM transactions`
	var args []interface{}
	if filter != nil && filter.RecipientID != "" {
		query += ` WHERE recipient_id = $1`
		args = append(args, filter.RecipientID)
	}

	direction := "DESC"
	for _, ord := range ordering {
		if ord.Field == "date" && ord.Ascending {
			direction = "ASC"
		}
	}
	query += " ORDER BY date " + direction

	var rows []transactionRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering transactions")
	}
	txns := make([]finance.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, row.toDomain())
	}
	return txns, nil
}
