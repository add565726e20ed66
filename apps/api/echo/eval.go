package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/eval"
)

type evalApi struct {
	svc eval.Service
}

func registerEvalAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc eval.Service) {
	api := evalApi{svc: svc}

	eg := g.Group("/evaluations", jwt)
	eg.POST("", api.submit)
	eg.GET("", api.query)
}

func (api *evalApi) submit(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data eval.NewEvaluation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvaluation")
	}

	ev, err := api.svc.Submit(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "submitting evaluation")
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *evalApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	evals, err := api.svc.Query(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "querying evaluations")
	}
	if evals == nil {
		evals = []eval.Evaluation{}
	}
	return ctx.JSON(http.StatusOK, evals)
}
