package nomics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"ticker_client/internal/feature/pricing/adapters/nomics/dto"
	"ticker_client/internal/feature/pricing/domain/entity"
	"ticker_client/internal/feature/pricing/usecase"
	"ticker_client/internal/shared/ratelimiter"
)

// tickerPath is absolute so it replaces any path carried by the base URL.
const tickerPath = "/v1/currencies/ticker"

// NomicsMarket はNomics外部APIからティッカー情報を取得するTickerRepository実装です。
type NomicsMarket struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
	logger  *slog.Logger
}

// NomicsMarketがTickerRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.TickerRepository = (*NomicsMarket)(nil)

// NewNomicsMarket は指定された設定とHTTPクライアントでNomicsMarketの新しいインスタンスを生成します。
// limiter が nil の場合はリクエスト間隔の制御を行いません。
func NewNomicsMarket(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface, logger *slog.Logger) *NomicsMarket {
	if logger == nil {
		logger = slog.Default()
	}
	return &NomicsMarket{cfg: cfg, client: client, limiter: limiter, logger: logger}
}

// FetchTickers はNomics APIから指定銘柄のティッカー情報を取得し、
// 銘柄シンボルをキーとするTickerTableとして返します。
// 429 応答は指数バックオフで再試行し、それ以外の200以外の応答は即座にAPIErrorになります。
func (m *NomicsMarket) FetchTickers(ctx context.Context, tickers []string, query map[string]string) (entity.TickerTable, error) {
	endpoint, err := m.endpoint(tickers, query)
	if err != nil {
		return nil, err
	}

	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		if m.limiter != nil {
			if err := m.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		m.logger.Debug("requesting tickers", "tickers", tickers, "attempt", attempt)

		b, err := m.get(ctx, endpoint)
		if err != nil {
			if isRateLimited(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		body = b
		return nil
	}
	notify := func(err error, wait time.Duration) {
		m.logger.Warn("rate limited by pricing api, retrying", "attempt", attempt, "wait", wait)
	}

	if err := backoff.RetryNotify(op, m.retryPolicy(ctx), notify); err != nil {
		return nil, err
	}

	return decodeTickers(body)
}

// endpoint はクエリ文字列を含む完全なリクエストURLを生成します。
func (m *NomicsMarket) endpoint(tickers []string, query map[string]string) (string, error) {
	base, err := url.Parse(m.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", m.cfg.BaseURL, err)
	}

	q := url.Values{}
	// 呼び出し元の追加パラメータはそのまま送るが、ids と key は上書きさせない
	for k, v := range query {
		q.Set(k, v)
	}
	q.Set("ids", strings.Join(tickers, ","))
	q.Set("key", m.cfg.APIKey)

	return base.ResolveReference(&url.URL{Path: tickerPath, RawQuery: q.Encode()}).String(), nil
}

// get は1回分のGETリクエストを実行し、200の場合のみ本文を返します。
func (m *NomicsMarket) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	res, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", usecase.ErrTransport, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			m.logger.Warn("failed to close response body", "error", err)
		}
	}()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", usecase.ErrTransport, err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, &usecase.APIError{StatusCode: res.StatusCode, Body: string(b)}
	}
	return b, nil
}

// retryPolicy は設定から再試行のバックオフを組み立てます。待機はctxのキャンセルで中断されます。
func (m *NomicsMarket) retryPolicy(ctx context.Context) backoff.BackOffContext {
	rc := m.cfg.Retry

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = rc.InitialInterval
	b.Multiplier = rc.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, rc.MaxRetries), ctx)
}

func isRateLimited(err error) bool {
	var apiErr *usecase.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// decodeTickers はJSON配列の応答をTickerTableに変換します。
// 同じシンボルが複数ある場合は後のレコードが優先されます。
func decodeTickers(body []byte) (entity.TickerTable, error) {
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, fmt.Errorf("%w: body is null", usecase.ErrMalformedResponse)
	}

	var records dto.TickerResponse
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", usecase.ErrMalformedResponse, err)
	}

	table := make(entity.TickerTable, len(records))
	for i, r := range records {
		rec := entity.TickerRecord(r)
		sym := rec.Symbol()
		if sym == "" {
			return nil, fmt.Errorf("%w: record %d has no %s", usecase.ErrMalformedResponse, i, entity.SymbolField)
		}
		table[sym] = rec
	}
	return table, nil
}
