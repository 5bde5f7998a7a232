// Package dto defines the JSON bodies served by the pricing HTTP gateway.
package dto

import "github.com/shopspring/decimal"

// ConvertResponse is the body of GET /v1/convert/:ticker/:fiat.
type ConvertResponse struct {
	Ticker string          `json:"ticker"`
	Fiat   string          `json:"fiat"`
	Rate   decimal.Decimal `json:"rate"`
}

// ExchangeResponse is the body of GET /v1/exchange/:from/:to.
type ExchangeResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
}
