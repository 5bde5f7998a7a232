package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickerBody = `[
	{"id":"ETH","symbol":"ETH","price":"45000.00","circulating_supply":"123"},
	{"id":"BTC","symbol":"BTC","price":"3000.23","circulating_supply":"456"}
]`

func newUpstream(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := newApp(&out, &errOut, logger).Run(append([]string{"ticker"}, args...))
	return out.String(), err
}

func TestGet(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, tickerBody)

	out, err := run(t, "-k", "letmein", "-u", srv.URL, "get", "ETH", "BTC")

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"BTC":{"id":"BTC","symbol":"BTC","price":"3000.23","circulating_supply":"456"},
		"ETH":{"id":"ETH","symbol":"ETH","price":"45000.00","circulating_supply":"123"}
	}`, out)
}

func TestGetProject(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, tickerBody)

	out, err := run(t, "-k", "letmein", "-u", srv.URL, "get-project", "price,circulating_supply", "ETH", "BTC")

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"BTC":{"price":"3000.23","circulating_supply":"456"},
		"ETH":{"price":"45000.00","circulating_supply":"123"}
	}`, out)
}

func TestConvertFiat(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, `[{"symbol":"ETH","price":"45000.00"}]`)

	out, err := run(t, "-k", "letmein", "-u", srv.URL, "convert-fiat", "ETH", "EUR")

	require.NoError(t, err)
	assert.Equal(t, "1 ETH = 45000 EUR\n", out)
}

func TestExchange(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, tickerBody)

	out, err := run(t, "-k", "letmein", "-u", srv.URL, "exchange", "ETH", "BTC")
	require.NoError(t, err)
	assert.Equal(t, "1 ETH = 14.9988500881599077 BTC\n", out)

	out, err = run(t, "-k", "letmein", "-u", srv.URL, "exchange", "--precision", "2", "ETH", "BTC")
	require.NoError(t, err)
	assert.Equal(t, "1 ETH = 15.00 BTC\n", out)
}

func TestAPIErrorExitsWithOne(t *testing.T) {
	srv := newUpstream(t, http.StatusInternalServerError, "Internal Server Error")

	_, err := run(t, "-k", "letmein", "-u", srv.URL, "convert-fiat", "ETH", "EUR")

	require.Error(t, err)
	assert.Equal(t, "API Error: 500 with body: Internal Server Error", err.Error())
	assert.Equal(t, 1, exitCode(err))
}

func TestNoCommand(t *testing.T) {
	out, err := run(t, "-k", "letmein")

	require.NoError(t, err)
	assert.Equal(t, "Please specify a command to use\n", out)
}

func TestUnknownCommand(t *testing.T) {
	out, err := run(t, "-k", "letmein", "frobnicate")

	require.Error(t, err)
	assert.Contains(t, out, "Unknown command")
	assert.Equal(t, 2, exitCode(err))
}

func TestMissingArguments(t *testing.T) {
	for _, args := range [][]string{
		{"get-project"},
		{"convert-fiat", "ETH"},
		{"exchange", "ETH"},
	} {
		_, err := run(t, append([]string{"-k", "letmein"}, args...)...)

		require.Error(t, err, args)
		assert.Equal(t, 2, exitCode(err), args)
	}
}

func TestFlagsAfterArguments(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(tickerBody))
	}))
	t.Cleanup(srv.Close)

	for _, args := range [][]string{
		{"get", "ETH", "-q", "status=active"},
		{"get-project", "price", "ETH", "--query", "status=active"},
		{"convert-fiat", "ETH", "EUR", "--precision", "3"},
		{"exchange", "ETH", "BTC", "--precision", "3"},
	} {
		_, err := run(t, append([]string{"-k", "letmein", "-u", srv.URL}, args...)...)

		require.Error(t, err, args)
		assert.Equal(t, 2, exitCode(err), args)
	}
	assert.Equal(t, int32(0), calls.Load(), "no request should reach the api")
}

func TestQueryBeforeArguments(t *testing.T) {
	var status atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status.Store(r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(tickerBody))
	}))
	t.Cleanup(srv.Close)

	_, err := run(t, "-k", "letmein", "-u", srv.URL, "get", "-q", "status=active", "ETH")

	require.NoError(t, err)
	assert.Equal(t, "active", status.Load())
}

func TestPrecisionOutOfRange(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, tickerBody)

	for _, p := range []string{"1001", "4294967296"} {
		_, err := run(t, "-k", "letmein", "-u", srv.URL, "exchange", "--precision", p, "ETH", "BTC")

		require.Error(t, err, p)
		assert.Equal(t, 2, exitCode(err), p)
	}

	out, err := run(t, "-k", "letmein", "-u", srv.URL, "exchange", "--precision", "20", "ETH", "BTC")
	require.NoError(t, err)
	assert.Equal(t, "1 ETH = 14.99885008815990770000 BTC\n", out)
}

func TestParseQuery(t *testing.T) {
	got, err := parseQuery([]string{"interval=1d,7d", "convert=EUR"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"interval": "1d,7d", "convert": "EUR"}, got)

	got, err = parseQuery(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseQuery([]string{"novalue"})
	var ue usageError
	assert.True(t, errors.As(err, &ue))
}

func TestFormatRate(t *testing.T) {
	rate := decimal.RequireFromString("14.9988500881599077")

	assert.Equal(t, "14.9988500881599077", formatRate(rate, -1))
	assert.Equal(t, "14.999", formatRate(rate, 3))
	assert.Equal(t, "15", formatRate(rate, 0))
}
