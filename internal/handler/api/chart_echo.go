package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"Astrolabe/internal/domain/models"
	"Astrolabe/internal/usecase"
	xhttp "Astrolabe/pkg/http"
	xlogger "Astrolabe/pkg/logger"
)

// ChartEchoHandler serves charts, synastry and the aspect catalog.
type ChartEchoHandler struct {
	logger   *xlogger.Logger
	charts   *usecase.ChartBuilder
	synastry *usecase.Synastry
}

func NewChartEchoHandler(logger *xlogger.Logger, charts *usecase.ChartBuilder, synastry *usecase.Synastry) *ChartEchoHandler {
	return &ChartEchoHandler{logger: logger, charts: charts, synastry: synastry}
}

func (h *ChartEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.POST("/charts", h.CreateChart)
	g.GET("/charts/:id", h.GetChart)
	g.POST("/synastry", h.Synastry)
	g.GET("/aspects/catalog", h.Catalog)
}

func (h *ChartEchoHandler) CreateChart(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	var (
		res *models.StoredChart
		err error
	)
	if req.Birth != nil {
		res, err = h.charts.FromBirthData(ctx, req.Subject, *req.Birth)
	} else {
		res, err = h.charts.FromEphemeris(ctx, req.Subject, *req.Ephemeris, nil)
	}
	if err != nil {
		return h.fail(c, "create chart", err)
	}
	return xhttp.CreatedResponse(c, res)
}

func (h *ChartEchoHandler) GetChart(c echo.Context) error {
	res, err := h.charts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, "get chart", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return xhttp.SuccessResponse(c, res)
}

func (h *ChartEchoHandler) Synastry(c echo.Context) error {
	req := &models.SynastryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.synastry.Compare(c.Request().Context(), usecase.SynastryInput{
		A: sideOf(req.A),
		B: sideOf(req.B),
	})
	if err != nil {
		return h.fail(c, "synastry", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ChartEchoHandler) Catalog(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, h.charts.Catalog())
}

func (h *ChartEchoHandler) Health(c echo.Context) error {
	if err := h.charts.Health(c.Request().Context()); err != nil {
		h.logger.Warn("chart store unhealthy", xlogger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// fail logs server side failures and writes the mapped error.
func (h *ChartEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func sideOf(r models.ChartRef) usecase.SynastrySide {
	return usecase.SynastrySide{ChartID: r.ChartID, Subject: r.Subject, Ephemeris: r.Ephemeris}
}
