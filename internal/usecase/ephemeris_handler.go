package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"Astrolabe/internal/domain/models"
	"Astrolabe/internal/services/chart"
	pkgkafka "Astrolabe/pkg/kafka"
	applogger "Astrolabe/pkg/logger"
)

// EphemerisMessage is the payload read from the ephemeris topic.
type EphemerisMessage struct {
	Subject   string                `json:"subject"`
	Birth     *models.BirthData     `json:"birth,omitempty"`
	Ephemeris *models.EphemerisData `json:"ephemeris"`
}

// EphemerisHandler builds charts from ephemeris payloads published by
// upstream producers.
type EphemerisHandler struct {
	topic  string
	charts *ChartBuilder
	log    *applogger.Logger
}

func NewEphemerisHandler(topic string, charts *ChartBuilder, log *applogger.Logger) *EphemerisHandler {
	return &EphemerisHandler{topic: topic, charts: charts, log: log}
}

func (h *EphemerisHandler) Topic() string { return h.topic }

// Handle returns permanent errors for payloads that can never succeed so the
// consumer dead-letters them without retrying.
func (h *EphemerisHandler) Handle(ctx context.Context, b []byte) error {
	var m EphemerisMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return pkgkafka.Permanent(fmt.Errorf("decode ephemeris message: %w", err))
	}
	if m.Ephemeris == nil {
		return pkgkafka.Permanent(fmt.Errorf("ephemeris message: %w", chart.ErrIncompleteChartData))
	}
	c, err := h.charts.Ingest(ctx, m.Subject, *m.Ephemeris, m.Birth)
	if err != nil {
		if chart.IsInputError(err) {
			return pkgkafka.Permanent(err)
		}
		return err
	}
	h.log.Debug("ephemeris message ingested", applogger.String("chart_id", c.ID))
	return nil
}

var _ pkgkafka.MessageHandler = (*EphemerisHandler)(nil)
