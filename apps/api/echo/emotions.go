package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/neurolearn/neuro/core/emotion"
)

type emotionApi struct {
	svc      *emotion.Service
	validate *validator.Validate
}

func registerEmotionAPI(g *echo.Group, svc *emotion.Service, validate *validator.Validate) {
	api := emotionApi{svc: svc, validate: validate}

	eg := g.Group("/emotions")
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.DELETE("", api.clear)
	eg.GET("/latest", api.latest)
}

// Handlers

func (api *emotionApi) query(ctx echo.Context) error {
	var filter emotion.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err := api.validate.Struct(filter); err != nil {
		return err
	}

	entries, err := api.svc.Recent(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying emotions")
	}
	if entries == nil {
		entries = []emotion.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *emotionApi) create(ctx echo.Context) error {
	var data emotion.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	entry, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording emotion")
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *emotionApi) latest(ctx echo.Context) error {
	entry, err := api.svc.Latest(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting latest emotion")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *emotionApi) clear(ctx echo.Context) error {
	if err := api.svc.Clear(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "clearing emotions")
	}
	return ctx.NoContent(http.StatusNoContent)
}
