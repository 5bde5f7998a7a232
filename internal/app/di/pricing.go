// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"

	"ticker_client/internal/feature/pricing/adapters/nomics"
	"ticker_client/internal/feature/pricing/usecase"
	infrahttp "ticker_client/internal/platform/http"
	"ticker_client/internal/shared/ratelimiter"
)

// NewPricingClient creates a fully configured PricingUsecase backed by the Nomics API.
// The HTTP client is built here once and shared by every call made through the result.
func NewPricingClient(cfg nomics.Config, logger *slog.Logger) *usecase.PricingUsecase {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout, "")
	market := nomics.NewNomicsMarket(cfg, httpClient, ratelimiter.PerMinute(cfg.RateLimit), logger)
	return usecase.NewPricingUsecase(market)
}
