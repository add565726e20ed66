package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type schoolApi struct {
	svc school.Service
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc school.Service) {
	api := schoolApi{svc: svc}

	sg := g.Group("/school", jwt)
	sg.POST("/announcements", api.announce)
	sg.GET("/announcements", api.queryAnnouncements)
	sg.POST("/events", api.createEvent)
	sg.GET("/events", api.queryEvents)
	sg.GET("/settings", api.settings)
	sg.PUT("/settings", api.updateSettings)
}

func (api *schoolApi) announce(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data school.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}

	ann, err := api.svc.Announce(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "posting announcement")
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *schoolApi) queryAnnouncements(ctx echo.Context) error {
	anns, err := api.svc.QueryAnnouncements(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if anns == nil {
		anns = []school.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *schoolApi) createEvent(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data school.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}

	evt, err := api.svc.CreateEvent(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *schoolApi) queryEvents(ctx echo.Context) error {
	events, err := api.svc.QueryEvents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []school.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *schoolApi) settings(ctx echo.Context) error {
	settings, err := api.svc.Settings(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting school settings")
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *schoolApi) updateSettings(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data school.UpdateSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}

	settings, err := api.svc.UpdateSettings(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "updating school settings")
	}
	return ctx.JSON(http.StatusOK, settings)
}
