// Package handler はpricingフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ticker_client/internal/feature/pricing/domain/entity"
	"ticker_client/internal/feature/pricing/transport/http/dto"
	"ticker_client/internal/feature/pricing/usecase"
)

// PricingUsecase は価格取得ユースケースのインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PricingUsecase interface {
	Fetch(ctx context.Context, tickers []string, query map[string]string) (entity.TickerTable, error)
	FetchProjection(ctx context.Context, fields, tickers []string, query map[string]string) (entity.TickerTable, error)
	ConvertToFiat(ctx context.Context, ticker, fiat string) (decimal.Decimal, error)
	ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// PricingHandler は価格取得に関するHTTPリクエストを処理します。
type PricingHandler struct {
	uc PricingUsecase
}

// NewPricingHandler は新しい PricingHandler を作成します。
func NewPricingHandler(uc PricingUsecase) *PricingHandler {
	return &PricingHandler{uc: uc}
}

// GetTickers は指定銘柄のティッカー情報をJSONで返します。
// fields を指定した場合はそのフィールドのみに絞り込みます。
// ids と fields 以外のクエリパラメータは価格APIへそのまま転送します。
//
// エンドポイント例:
// GET /v1/tickers?ids=ETH,BTC&fields=price,circulating_supply&status=active
func (h *PricingHandler) GetTickers(c *gin.Context) {
	ids := splitList(c.Query("ids"))
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "ids is required"})
		return
	}
	fields := splitList(c.Query("fields"))

	extra := map[string]string{}
	for k, v := range c.Request.URL.Query() {
		if k == "ids" || k == "fields" || len(v) == 0 {
			continue
		}
		extra[k] = v[0]
	}

	var (
		table entity.TickerTable
		err   error
	)
	if len(fields) > 0 {
		table, err = h.uc.FetchProjection(c.Request.Context(), fields, ids, extra)
	} else {
		table, err = h.uc.Fetch(c.Request.Context(), ids, extra)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, table)
}

// ConvertToFiat は1銘柄の法定通貨建て価格を返します。
//
// エンドポイント例:
// GET /v1/convert/ETH/EUR
func (h *PricingHandler) ConvertToFiat(c *gin.Context) {
	ticker, fiat := c.Param("ticker"), c.Param("fiat")

	rate, err := h.uc.ConvertToFiat(c.Request.Context(), ticker, fiat)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ConvertResponse{Ticker: ticker, Fiat: fiat, Rate: rate})
}

// ExchangeRate は2銘柄間の交換レートを返します。
//
// エンドポイント例:
// GET /v1/exchange/ETH/BTC
func (h *PricingHandler) ExchangeRate(c *gin.Context) {
	from, to := c.Param("from"), c.Param("to")

	rate, err := h.uc.ExchangeRate(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ExchangeResponse{From: from, To: to, Rate: rate})
}

// writeError はユースケースのエラーをHTTPステータスに対応付けて返します。
func writeError(c *gin.Context, err error) {
	var apiErr *usecase.APIError
	switch {
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:          err.Error(),
			UpstreamStatus: apiErr.StatusCode,
			UpstreamBody:   apiErr.Body,
		})
	case errors.Is(err, usecase.ErrTickerNotFound), errors.Is(err, usecase.ErrFieldNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrMalformedResponse), errors.Is(err, usecase.ErrInvalidPrice),
		errors.Is(err, usecase.ErrZeroPrice), errors.Is(err, usecase.ErrTransport):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}

// splitList はカンマ区切りの値を分割し、空要素を取り除きます。
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
