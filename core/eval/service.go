package eval

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var ErrUserNotFound = errors.New("evaluated user not found")

type (
	Repository interface {
		CreateEvaluation(ctx context.Context, ev Evaluation) (Evaluation, error)
		QueryEvaluations(ctx context.Context, ordering []core.DBOrdering) ([]Evaluation, error)
	}

	Service interface {
		Submit(ctx context.Context, actor user.Actor, ne NewEvaluation) (Evaluation, error)
		Query(ctx context.Context, actor user.Actor) ([]Evaluation, error)
	}

	service struct {
		repo   Repository
		usrSvc user.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service) Service {
	return &service{repo: repo, usrSvc: usrSvc}
}

// Submit records a principal's performance review of a user.
func (svc *service) Submit(ctx context.Context, actor user.Actor, ne NewEvaluation) (Evaluation, error) {
	if !actor.Role.IsPrincipal() {
		return Evaluation{}, core.ErrPermissionDenied
	}
	if err := ne.Validate(); err != nil {
		return Evaluation{}, err
	}

	if _, err := svc.usrSvc.GetByID(ctx, ne.UserID); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Evaluation{}, ErrUserNotFound
		}
		return Evaluation{}, errors.Wrap(err, "finding evaluated user")
	}

	return svc.repo.CreateEvaluation(ctx, Evaluation{
		UserID:      ne.UserID,
		EvaluatorID: actor.ID,
		Score:       ne.Score,
		Comments:    ne.Comments,
	})
}

func (svc *service) Query(ctx context.Context, actor user.Actor) ([]Evaluation, error) {
	if !actor.Role.IsPrincipal() {
		return nil, core.ErrPermissionDenied
	}
	ordering := []core.DBOrdering{{Field: "date", Ascending: false}}
	return svc.repo.QueryEvaluations(ctx, ordering)
}
