// Package router はHTTPゲートウェイのルーティングを定義します。
package router

import (
	"github.com/gin-gonic/gin"

	pricinghandler "ticker_client/internal/feature/pricing/transport/handler"
	"ticker_client/internal/platform/http/handler"
)

// ServiceName はヘルスチェックで返すサービス名です。
const ServiceName = "ticker_client"

// NewRouter は価格APIゲートウェイのルーターを生成します。
func NewRouter(pricing *pricinghandler.PricingHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	health := handler.NewHealth(ServiceName)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	v1 := r.Group("/v1")
	{
		v1.GET("/tickers", pricing.GetTickers)
		v1.GET("/convert/:ticker/:fiat", pricing.ConvertToFiat)
		v1.GET("/exchange/:from/:to", pricing.ExchangeRate)
	}

	return r
}
