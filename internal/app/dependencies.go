package app

import (
	"github.com/btcrunway/btcrunway/internal/utils"
	"github.com/btcrunway/btcrunway/pkg/price_history"
	"github.com/btcrunway/btcrunway/pkg/projection"
	"github.com/btcrunway/btcrunway/pkg/quote"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	ProjectionService projection.Service
	CsvSeriesRenderer *projection.CsvSeriesRendererImpl
	ProjectionHandler *projection.Handler

	QuoteClient quote.Client

	PriceHistoryRepo    price_history.Repository
	PriceHistoryService price_history.Service
	PriceHistoryHandler *price_history.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(priceHistoryRepo price_history.Repository, quoteClient quote.Client) *Dependencies {
	deps := &Dependencies{}

	deps.ProjectionService = projection.NewService()
	deps.CsvSeriesRenderer = projection.NewCsvSeriesRenderer()
	deps.ProjectionHandler = projection.NewHandler(deps.ProjectionService, deps.CsvSeriesRenderer)

	deps.QuoteClient = quoteClient

	deps.Clock = &utils.SystemClock{}
	deps.PriceHistoryRepo = priceHistoryRepo
	deps.PriceHistoryService = price_history.NewService(deps.PriceHistoryRepo, deps.QuoteClient, deps.Clock)
	deps.PriceHistoryHandler = price_history.NewHandler(deps.PriceHistoryService)

	return deps
}
