package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Astrolabe/internal/domain/models"
	"Astrolabe/internal/repository"
	"Astrolabe/internal/service/cache"
	"Astrolabe/internal/services/chart"
	"Astrolabe/internal/services/ephemeris"
	"Astrolabe/internal/usecase"
	xhttp "Astrolabe/pkg/http"
	xlogger "Astrolabe/pkg/logger"
	"Astrolabe/pkg/metrics"
)

const cusps = `[0,30,60,90,120,150,180,210,240,270,300,330]`

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	server   *xhttp.Server
	upstream *httptest.Server
	failing  atomic.Bool
	calls    atomic.Int32
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	a := &testAPI{}
	a.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.calls.Add(1)
		if a.failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bodies":[{"id":"sun","longitude":100,"speed":1},{"id":"moon","longitude":220,"speed":13}],"cusps":` + cusps + `}`))
	}))
	t.Cleanup(a.upstream.Close)

	log := xlogger.Nop()
	store := repository.NewMemoryChartStore()
	provider := ephemeris.NewHTTPProvider(a.upstream.URL, time.Second, log, ephemeris.WithRetry(1, time.Millisecond, time.Millisecond))
	assembler := chart.NewAssembler()
	scorer := chart.NewScorer()
	chartCache := cache.NewChartCache(cache.NewTTLCache(), time.Minute, log)

	builder := usecase.NewChartBuilder(assembler, provider, store, chartCache, repository.NopPublisher{}, metrics.Nop{}, log)
	syn := usecase.NewSynastry(builder, scorer, repository.NopPublisher{}, metrics.Nop{}, log)
	tracker := usecase.NewTransitTracker(builder, provider, assembler, scorer, metrics.Nop{}, log)

	reg := prometheus.NewRegistry()
	a.server = xhttp.NewServer(log, []xhttp.Handler{
		NewChartEchoHandler(log, builder, syn),
		NewTransitHandler(log, tracker, builder, 5*time.Millisecond, time.Second),
	}, xhttp.WithMetrics("/metrics", reg, reg))
	return a
}

func (a *testAPI) do(t *testing.T, method, target, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.server.Echo().ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (a *testAPI) createChart(t *testing.T, body string) models.StoredChart {
	t.Helper()
	code, env := a.do(t, http.MethodPost, "/api/charts", body)
	require.Equal(t, http.StatusCreated, code, string(env.Data))
	var c models.StoredChart
	require.NoError(t, json.Unmarshal(env.Data, &c))
	return c
}

func errorCode(t *testing.T, env envelope) string {
	t.Helper()
	var errs []struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	require.NotEmpty(t, errs)
	return errs[0].Code
}

func TestCreateChartFromEphemeris(t *testing.T) {
	a := newTestAPI(t)
	c := a.createChart(t, `{"subject":"ada","ephemeris":{"bodies":[{"id":"sun","longitude":15,"speed":1},{"id":"mars","longitude":195,"speed":-0.2}],"cusps":`+cusps+`}}`)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "ada", c.Subject)
	assert.Equal(t, models.Libra, c.Chart.Bodies[models.Mars].Sign)
	assert.True(t, c.Chart.Bodies[models.Mars].Retrograde)
	require.Len(t, c.Chart.Aspects, 1)
	assert.Equal(t, models.Opposition, c.Chart.Aspects[0].Type)
	assert.Zero(t, a.calls.Load())

	code, env := a.do(t, http.MethodGet, "/api/charts/"+c.ID, "")
	assert.Equal(t, http.StatusOK, code)
	var got models.StoredChart
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, c.ID, got.ID)
}

func TestCreateChartFromBirthData(t *testing.T) {
	a := newTestAPI(t)
	body := `{"subject":"lea","birth":{"time":"1990-03-01T06:30:00Z","latitude":48.85,"longitude":2.35}}`

	first := a.createChart(t, body)
	second := a.createChart(t, body)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, models.Cancer, first.Chart.Bodies[models.Sun].Sign)
	require.NotNil(t, first.Birth)
	assert.Equal(t, models.Placidus, first.Birth.HouseSystem)
}

func TestCreateChartValidation(t *testing.T) {
	a := newTestAPI(t)
	tests := []struct {
		name string
		body string
	}{
		{"neither source", `{"subject":"x"}`},
		{"both sources", `{"birth":{"time":"1990-03-01T06:30:00Z"},"ephemeris":{"cusps":` + cusps + `}}`},
		{"latitude out of range", `{"birth":{"time":"1990-03-01T06:30:00Z","latitude":95}}`},
		{"unknown house system", `{"birth":{"time":"1990-03-01T06:30:00Z","house_system":"topocentric"}}`},
		{"malformed", `{"birth":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := a.do(t, http.MethodPost, "/api/charts", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
		})
	}
}

func TestCreateChartInvalidEphemeris(t *testing.T) {
	a := newTestAPI(t)
	code, env := a.do(t, http.MethodPost, "/api/charts", `{"ephemeris":{"bodies":[{"id":"sun","longitude":15}],"cusps":[0,30,60]}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ERR_INVALID_CHART", errorCode(t, env))
}

func TestCreateChartUpstreamFailure(t *testing.T) {
	a := newTestAPI(t)
	a.failing.Store(true)
	code, env := a.do(t, http.MethodPost, "/api/charts", `{"birth":{"time":"2001-01-01T00:00:00Z"}}`)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "ERR_UPSTREAM", errorCode(t, env))
}

func TestGetUnknownChart(t *testing.T) {
	a := newTestAPI(t)
	code, env := a.do(t, http.MethodGet, "/api/charts/nope", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "ERR_NOT_FOUND", errorCode(t, env))
}

func TestSynastry(t *testing.T) {
	a := newTestAPI(t)
	stored := a.createChart(t, `{"ephemeris":{"bodies":[{"id":"sun","longitude":0}],"cusps":`+cusps+`}}`)

	code, env := a.do(t, http.MethodPost, "/api/synastry",
		`{"a":{"chart_id":"`+stored.ID+`"},"b":{"subject":"b","ephemeris":{"bodies":[{"id":"sun","longitude":180}],"cusps":`+cusps+`}}}`)
	require.Equal(t, http.StatusOK, code, string(env.Data))
	var r models.SynastryReport
	require.NoError(t, json.Unmarshal(env.Data, &r))
	assert.Equal(t, stored.ID, r.ChartA)
	assert.NotEmpty(t, r.ChartB)
	assert.Equal(t, 7, r.Result.OverallScore)
	require.Len(t, r.Result.CrossAspects, 1)

	code, _ = a.do(t, http.MethodPost, "/api/synastry", `{"a":{"chart_id":"`+stored.ID+`"},"b":{}}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(t, http.MethodPost, "/api/synastry", `{"a":{"chart_id":"missing"},"b":{"chart_id":"`+stored.ID+`"}}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCatalogAndHealth(t *testing.T) {
	a := newTestAPI(t)
	code, env := a.do(t, http.MethodGet, "/api/aspects/catalog", "")
	require.Equal(t, http.StatusOK, code)
	var defs []models.AspectDefinition
	require.NoError(t, json.Unmarshal(env.Data, &defs))
	assert.Len(t, defs, 9)
	assert.Equal(t, models.Conjunction, defs[0].Type)

	code, _ = a.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestTransitWebsocket(t *testing.T) {
	a := newTestAPI(t)
	natal := a.createChart(t, `{"ephemeris":{"bodies":[{"id":"sun","longitude":273}],"cusps":`+cusps+`}}`)

	srv := httptest.NewServer(a.server.Echo())
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/transits/ws?chart_id=" + natal.ID

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 2; i++ {
		var snap models.TransitSnapshot
		require.NoError(t, conn.ReadJSON(&snap))
		assert.Equal(t, natal.ID, snap.ChartID)
		require.Len(t, snap.Aspects, 1)
		// transiting Sun at 100 opposes natal Sun at 273; the Moon at 220 is out of orb
		assert.Equal(t, models.Opposition, snap.Aspects[0].Type)
	}
}

func TestTransitWebsocketUnknownChart(t *testing.T) {
	a := newTestAPI(t)
	srv := httptest.NewServer(a.server.Echo())
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/transits/ws?chart_id=nope", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTransitSnapshot(t *testing.T) {
	a := newTestAPI(t)
	natal := a.createChart(t, `{"ephemeris":{"bodies":[{"id":"moon","longitude":100}],"cusps":`+cusps+`}}`)

	code, env := a.do(t, http.MethodGet, "/api/charts/"+natal.ID+"/transits?at=2024-06-01T12:00:00Z", "")
	require.Equal(t, http.StatusOK, code, string(env.Data))
	var snap models.TransitSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), snap.At.UTC())
	// transiting Sun at 100 conjoins the natal Moon; transiting Moon at 220 trines it
	require.Len(t, snap.Aspects, 2)
	assert.Equal(t, models.Conjunction, snap.Aspects[0].Type)
	assert.Equal(t, models.Trine, snap.Aspects[1].Type)

	code, _ = a.do(t, http.MethodGet, "/api/charts/"+natal.ID+"/transits?at=someday", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(t, http.MethodGet, "/api/charts/nope/transits", "")
	assert.Equal(t, http.StatusNotFound, code)
}
