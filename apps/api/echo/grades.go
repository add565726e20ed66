package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/grades"
)

type gradesApi struct {
	svc grades.Service
}

func registerGradesAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc grades.Service) {
	api := gradesApi{svc: svc}

	gg := g.Group("/grades", jwt)
	gg.GET("/:courseID", api.load)
	gg.PUT("", api.save)
}

func (api *gradesApi) load(ctx echo.Context) error {
	cells, err := api.svc.LoadGrades(ctx.Request().Context(), ctx.Param("courseID"))
	if err != nil {
		return errors.Wrap(err, "loading grades")
	}
	if cells == nil {
		cells = []grades.Grade{}
	}
	return ctx.JSON(http.StatusOK, cells)
}

// save upserts a whole grade sheet. One invalid cell rejects the batch.
func (api *gradesApi) save(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var batch grades.GradeBatch
	if err := ctx.Bind(&batch); err != nil {
		return errors.Wrap(err, "binding to GradeBatch")
	}

	saved, err := api.svc.SaveGrades(ctx.Request().Context(), actor, batch)
	if err != nil {
		return errors.Wrap(err, "saving grades")
	}
	return ctx.JSON(http.StatusOK, SaveGradesResponse{Saved: saved})
}

type SaveGradesResponse struct {
	Saved int `json:"saved"`
}
