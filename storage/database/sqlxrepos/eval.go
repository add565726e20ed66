package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/eval"
)

type evaluationRow struct {
	ID          string      `db:"id"`
	UserID      string      `db:"user_id"`
	EvaluatorID string      `db:"evaluator_id"`
	Score       float64     `db:"score"`
	Comments    null.String `db:"comments"`
	Date        time.Time   `db:"date"`
}

func (r evaluationRow) toDomain() eval.Evaluation {
	return eval.Evaluation{
		ID:          r.ID,
		UserID:      r.UserID,
		EvaluatorID: r.EvaluatorID,
		Score:       r.Score,
		Comments:    r.Comments.String,
		Date:        r.Date,
	}
}

type evalRepository struct {
	db *sqlx.DB
}

var _ eval.Repository = (*evalRepository)(nil) // interface compliance check

func NewEvalRepository(db *sqlx.DB) *evalRepository {
	return &evalRepository{db: db}
}

func (repo *evalRepository) CreateEvaluation(ctx context.Context, ev eval.Evaluation) (eval.Evaluation, error) {
	ev.ID = uuid.New().String()
	ev.Date = time.Now().UTC()
	const query = `INSERT INTO evaluations (id, user_id, evaluator_id, score, comments, date) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := repo.db.ExecContext(ctx, query,
		ev.ID, ev.UserID, ev.EvaluatorID, ev.Score, null.NewString(ev.Comments, ev.Comments != ""), ev.Date,
	); err != nil {
		return eval.Evaluation{}, errors.Wrap(err, "inserting evaluation")
	}
	return ev, nil
}

func (repo *evalRepository) QueryEvaluations(ctx context.Context, ordering []core.DBOrdering) ([]eval.Evaluation, error) {
	direction := "DESC"
	for _, ord := range ordering {
		if ord.Field == "date" && ord.Ascending {
			direction = "ASC"
		}
	}
	query := `SELECT id, user_id, evaluator_id, score, comments, date FROM evaluations ORDER BY date ` + direction

	var rows []evaluationRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying evaluations")
	}
	evals := make([]eval.Evaluation, 0, len(rows))
	for _, row := range rows {
		evals = append(evals, row.toDomain())
	}
	return evals, nil
}
