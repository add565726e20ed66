package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/eval"
)

type evalRepository struct {
	db *evalTable
}

var _ eval.Repository = (*evalRepository)(nil) // interface compliance check

func NewEvalRepository(db *DB) eval.Repository {
	return &evalRepository{db: db.eval}
}

func (repo *evalRepository) CreateEvaluation(_ context.Context, ev eval.Evaluation) (eval.Evaluation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ev.ID = uuid.New().String()
	ev.Date = time.Now().UTC()
	repo.db.evaluations = append(repo.db.evaluations, ev)
	return ev, nil
}

func (repo *evalRepository) QueryEvaluations(_ context.Context, ordering []core.DBOrdering) ([]eval.Evaluation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	evals := make([]eval.Evaluation, len(repo.db.evaluations))
	copy(evals, repo.db.evaluations)

	ascending := false
	for _, ord := range ordering {
		if ord.Field == "date" {
			ascending = ord.Ascending
		}
	}
	sort.SliceStable(evals, func(i, j int) bool {
		if ascending {
			return evals[i].Date.Before(evals[j].Date)
		}
		return evals[i].Date.After(evals[j].Date)
	})
	return evals, nil
}
