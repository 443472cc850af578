package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"Astrolabe/internal/domain/models"
	"Astrolabe/internal/usecase"
	xhttp "Astrolabe/pkg/http"
	xlogger "Astrolabe/pkg/logger"
	"Astrolabe/pkg/util"
)

const wsWriteWait = 10 * time.Second

// TransitHandler serves transit snapshots, one at a time or as a websocket stream.
type TransitHandler struct {
	logger      *xlogger.Logger
	tracker     *usecase.TransitTracker
	charts      *usecase.ChartBuilder
	interval    time.Duration
	maxDuration time.Duration
	upgrader    websocket.Upgrader
}

func NewTransitHandler(logger *xlogger.Logger, tracker *usecase.TransitTracker, charts *usecase.ChartBuilder, interval, maxDuration time.Duration) *TransitHandler {
	return &TransitHandler{
		logger:      logger,
		tracker:     tracker,
		charts:      charts,
		interval:    interval,
		maxDuration: maxDuration,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *TransitHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/transits/ws", h.Stream)
	e.GET("/api/charts/:id/transits", h.Snapshot)
}

// Snapshot answers with the transits at the `at` query parameter, now when absent.
func (h *TransitHandler) Snapshot(c echo.Context) error {
	raw := c.QueryParam("at")
	at, ok := util.ParseTime(raw)
	if raw != "" && !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("cannot parse at=%q", raw).WithParam("field", "at"))
	}
	if raw == "" {
		at = time.Now()
	}
	res, err := h.tracker.Snapshot(c.Request().Context(), c.Param("id"), at)
	if err != nil {
		appErr := toAppError(err)
		if appErr.Status >= http.StatusInternalServerError {
			h.logger.Error("transit snapshot failed", xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *TransitHandler) Stream(c echo.Context) error {
	req := &models.TransitRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	// Unknown charts get a plain 404 instead of an upgraded connection.
	if _, err := h.charts.Get(c.Request().Context(), req.ChartID); err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()
	// The server read timeout still applies to the hijacked connection.
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if h.maxDuration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, h.maxDuration)
		defer stop()
	}

	// The client never sends data; reading only detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Info("transit stream opened", xlogger.String("chart_id", req.ChartID))
	err = h.tracker.Stream(ctx, req.ChartID, h.interval, func(s *models.TransitSnapshot) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(s)
	})

	reason := "client closed"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = "max duration reached"
	case err != nil && !errors.Is(err, context.Canceled):
		reason = toAppError(err).Message
		h.logger.Warn("transit stream failed", xlogger.String("chart_id", req.ChartID), xlogger.Error(err))
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(wsWriteWait))
	h.logger.Info("transit stream closed", xlogger.String("chart_id", req.ChartID), xlogger.String("reason", reason))
	return nil
}
