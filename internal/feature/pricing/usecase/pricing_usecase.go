// Package usecase は価格取得・換算のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"ticker_client/internal/feature/pricing/domain/entity"
)

const (
	// PriceField はティッカーの価格フィールド名です。
	PriceField = "price"
	// ConvertParam は価格の換算先通貨を指定するクエリパラメータ名です。
	ConvertParam = "convert"
)

// TickerRepository はティッカー情報を取得するリポジトリのインターフェイスです。
// 外部 API の実装を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type TickerRepository interface {
	// FetchTickers は指定銘柄のティッカー情報を1回の論理リクエストで取得します。
	// query は ids / key 以外の追加クエリパラメータで、そのまま送信されます。
	FetchTickers(ctx context.Context, tickers []string, query map[string]string) (entity.TickerTable, error)
}

// PricingUsecase はティッカー取得と、そこから導出される価格計算を提供します。
type PricingUsecase struct {
	repo TickerRepository
}

// NewPricingUsecase は新しい PricingUsecase を作成します。
func NewPricingUsecase(repo TickerRepository) *PricingUsecase {
	return &PricingUsecase{repo: repo}
}

// Fetch は指定銘柄のティッカー情報を銘柄シンボルをキーとするテーブルで返します。
func (u *PricingUsecase) Fetch(ctx context.Context, tickers []string, query map[string]string) (entity.TickerTable, error) {
	return u.repo.FetchTickers(ctx, tickers, query)
}

// FetchProjection は Fetch の結果を、各レコードについて fields に指定したフィールドだけに絞って返します。
// レコードに存在しないフィールドはエラーにせず省略します。
func (u *PricingUsecase) FetchProjection(ctx context.Context, fields, tickers []string, query map[string]string) (entity.TickerTable, error) {
	table, err := u.repo.FetchTickers(ctx, tickers, query)
	if err != nil {
		return nil, err
	}
	return table.Project(fields), nil
}

// ConvertToFiat は ticker の価格を法定通貨 fiat 建てで返します。
func (u *PricingUsecase) ConvertToFiat(ctx context.Context, ticker, fiat string) (decimal.Decimal, error) {
	table, err := u.FetchProjection(ctx, []string{PriceField}, []string{ticker}, map[string]string{ConvertParam: fiat})
	if err != nil {
		return decimal.Zero, err
	}
	return priceOf(table, ticker)
}

// ExchangeRate は1 from あたりの to の量（from の価格 / to の価格）を返します。
// 両銘柄の価格は1回のリクエストで取得し、浮動小数点を介さず decimal で除算します。
func (u *PricingUsecase) ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	table, err := u.FetchProjection(ctx, []string{PriceField}, []string{from, to}, nil)
	if err != nil {
		return decimal.Zero, err
	}

	fromPrice, err := priceOf(table, from)
	if err != nil {
		return decimal.Zero, err
	}
	toPrice, err := priceOf(table, to)
	if err != nil {
		return decimal.Zero, err
	}
	if toPrice.IsZero() {
		return decimal.Zero, fmt.Errorf("exchange %s to %s: %w", from, to, ErrZeroPrice)
	}

	return fromPrice.Div(toPrice), nil
}

// priceOf はテーブルから ticker の価格を取り出し decimal に変換します。
func priceOf(table entity.TickerTable, ticker string) (decimal.Decimal, error) {
	rec, ok := table[ticker]
	if !ok {
		return decimal.Zero, &LookupError{Ticker: ticker}
	}
	raw, ok := rec[PriceField]
	if !ok {
		return decimal.Zero, &LookupError{Ticker: ticker, Field: PriceField}
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q for %s: %v", ErrInvalidPrice, raw, ticker, err)
	}
	return price, nil
}
