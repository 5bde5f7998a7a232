package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"ticker_client/internal/feature/pricing/domain/entity"
	pricinghandler "ticker_client/internal/feature/pricing/transport/handler"
	"ticker_client/internal/feature/pricing/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubRepository always returns the same table.
type stubRepository struct {
	table entity.TickerTable
}

func (s stubRepository) FetchTickers(ctx context.Context, tickers []string, query map[string]string) (entity.TickerTable, error) {
	return s.table, nil
}

func newTestRouter() *gin.Engine {
	uc := usecase.NewPricingUsecase(stubRepository{table: entity.TickerTable{
		"ETH": {"symbol": "ETH", "price": "45000.00"},
		"BTC": {"symbol": "BTC", "price": "3000.23"},
	}})
	return NewRouter(pricinghandler.NewPricingHandler(uc))
}

func TestNewRouter_Routes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		target         string
		expectedStatus int
		expectedBody   string
	}{
		{"health", http.MethodGet, "/healthz", http.StatusOK, `{"status":"ok","service":"ticker_client"}`},
		{"health head", http.MethodHead, "/healthz", http.StatusOK, ""},
		{"tickers", http.MethodGet, "/v1/tickers?ids=ETH&fields=price", http.StatusOK, `{"ETH":{"price":"45000.00"},"BTC":{"price":"3000.23"}}`},
		{"convert", http.MethodGet, "/v1/convert/ETH/EUR", http.StatusOK, `{"ticker":"ETH","fiat":"EUR","rate":"45000"}`},
		{"exchange", http.MethodGet, "/v1/exchange/ETH/BTC", http.StatusOK, `{"from":"ETH","to":"BTC","rate":"14.9988500881599077"}`},
		{"convert unknown ticker", http.MethodGet, "/v1/convert/DOGE/EUR", http.StatusNotFound, `{"error":"ticker DOGE not found in response"}`},
		{"unknown route", http.MethodGet, "/v1/nope", http.StatusNotFound, ""},
	}

	router := newTestRouter()

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}
