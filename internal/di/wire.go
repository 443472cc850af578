//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	domsvc "Astrolabe/internal/domain/service"
	"Astrolabe/internal/handler/api"
	"Astrolabe/internal/services/chart"
	"Astrolabe/internal/services/ephemeris"
	"Astrolabe/internal/usecase"
	"Astrolabe/pkg/config"
	"Astrolabe/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Engine
		ProvideCatalog,
		ProvideAssembler,
		ProvideScorer,
		wire.Bind(new(domsvc.ChartAssembler), new(*chart.Assembler)),
		wire.Bind(new(domsvc.CompatibilityScorer), new(*chart.Scorer)),

		// Infrastructure
		ProvideEphemerisProvider,
		wire.Bind(new(domsvc.EphemerisProvider), new(*ephemeris.HTTPProvider)),
		ProvideChartStore,
		ProvideBytesCache,
		ProvideChartCache,
		ProvideEventPublisher,
		ProvideKafkaConsumer,
		ProvideRateLimiter,

		// Use cases
		usecase.NewChartBuilder,
		usecase.NewSynastry,
		usecase.NewTransitTracker,
		ProvideEphemerisHandler,

		// HTTP
		api.NewChartEchoHandler,
		ProvideTransitHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
