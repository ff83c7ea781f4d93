package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/neurolearn/neuro/core"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPingPeriod = 30 * time.Second
)

type captureApi struct {
	svc      CaptureService
	logger   core.Logger
	upgrader websocket.Upgrader
}

func registerCaptureAPI(g *echo.Group, svc CaptureService, logger core.Logger, frontendOrigin string) {
	api := captureApi{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get(echo.HeaderOrigin)
				return origin == "" || frontendOrigin == "*" || origin == frontendOrigin
			},
		},
	}

	cg := g.Group("/capture")
	cg.POST("/start", api.start)
	cg.POST("/stop", api.stop)
	cg.GET("/status", api.status)
	cg.GET("/ws", api.watch)
}

// Handlers

func (api *captureApi) start(ctx echo.Context) error {
	// the session outlives the request
	if err := api.svc.Start(context.Background()); err != nil {
		return errors.Wrap(err, "starting capture session")
	}
	return ctx.JSON(http.StatusAccepted, api.svc.Status())
}

func (api *captureApi) stop(ctx echo.Context) error {
	api.svc.Stop()
	return ctx.JSON(http.StatusOK, api.svc.Status())
}

func (api *captureApi) status(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Status())
}

// watch streams status snapshots over a websocket until the client goes away.
func (api *captureApi) watch(ctx echo.Context) error {
	conn, err := api.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return nil // upgrader already replied
	}
	defer func() { _ = conn.Close() }()

	updates, unsubscribe := api.svc.Subscribe()
	defer unsubscribe()

	// reader: detect closed connections
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return nil
		case st, ok := <-updates:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(st); err != nil {
				api.logger.Debug("writing capture status", err)
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return nil
			}
		}
	}
}
