package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"ticker_client/internal/app/di"
	"ticker_client/internal/app/router"
	"ticker_client/internal/feature/pricing/adapters/nomics"
	"ticker_client/internal/feature/pricing/transport/handler"
	"ticker_client/internal/feature/pricing/usecase"
)

// maxPrecision は --precision に指定できる最大の小数桁数です。
const maxPrecision = 1000

// runner は各サブコマンドの実装を保持します。
type runner struct {
	log *slog.Logger
}

// client はフラグと環境変数から設定を組み立て、PricingUsecase を生成します。
func (r *runner) client(c *cli.Context) *usecase.PricingUsecase {
	cfg := nomics.LoadConfig()
	cfg.APIKey = c.String(flagAPIKey)
	cfg.BaseURL = c.String(flagURL)
	return di.NewPricingClient(cfg, r.log)
}

func (r *runner) get(c *cli.Context) error {
	extra, err := parseQuery(c.StringSlice(flagQuery))
	if err != nil {
		return err
	}

	tickers, err := positional(c)
	if err != nil {
		return err
	}

	table, err := r.client(c).Fetch(c.Context, tickers, extra)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, table)
}

func (r *runner) getProject(c *cli.Context) error {
	args, err := positional(c)
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return usage(c)
	}
	extra, err := parseQuery(c.StringSlice(flagQuery))
	if err != nil {
		return err
	}

	fields := strings.Split(args[0], ",")
	table, err := r.client(c).FetchProjection(c.Context, fields, args[1:], extra)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, table)
}

func (r *runner) convertFiat(c *cli.Context) error {
	args, err := positional(c)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usage(c)
	}
	precision, err := precisionOf(c)
	if err != nil {
		return err
	}
	ticker, fiat := args[0], args[1]

	rate, err := r.client(c).ConvertToFiat(c.Context, ticker, fiat)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "1 %s = %s %s\n", ticker, formatRate(rate, precision), fiat)
	return nil
}

func (r *runner) exchange(c *cli.Context) error {
	args, err := positional(c)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usage(c)
	}
	precision, err := precisionOf(c)
	if err != nil {
		return err
	}
	from, to := args[0], args[1]

	rate, err := r.client(c).ExchangeRate(c.Context, from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "1 %s = %s %s\n", from, formatRate(rate, precision), to)
	return nil
}

// serve はHTTPゲートウェイを起動し、SIGINT/SIGTERMで停止します。
func (r *runner) serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              c.String(flagAddr),
		Handler:           router.NewRouter(handler.NewPricingHandler(r.client(c))),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.log.Info("pricing gateway listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// parseQuery は key=value 形式の値を追加クエリパラメータに変換します。
func parseQuery(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, usageError{msg: fmt.Sprintf("invalid query %q: want key=value", p)}
		}
		out[k] = v
	}
	return out, nil
}

// positional は位置引数を返します。フラグは位置引数より前に置く必要があるため、
// 位置引数の後ろに置かれたフラグは銘柄として送らずに使い方の誤りとして扱います。
func positional(c *cli.Context) ([]string, error) {
	args := c.Args().Slice()
	for _, a := range args {
		if len(a) > 1 && strings.HasPrefix(a, "-") {
			return nil, usageError{msg: fmt.Sprintf("flag %q must come before the arguments: %s %s %s", a, c.App.Name, c.Command.Name, c.Command.ArgsUsage)}
		}
	}
	return args, nil
}

// precisionOf は --precision の値を検証して返します。負の値は丸めなしを意味します。
func precisionOf(c *cli.Context) (int, error) {
	p := c.Int(flagPrecision)
	if p > maxPrecision {
		return 0, usageError{msg: fmt.Sprintf("precision %d is out of range (max %d)", p, maxPrecision)}
	}
	return p, nil
}

// formatRate はレートを表示用の文字列にします。丸めはここでのみ行います。
func formatRate(rate decimal.Decimal, precision int) string {
	if precision < 0 {
		return rate.String()
	}
	return rate.StringFixed(int32(precision))
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func usage(c *cli.Context) error {
	return usageError{msg: fmt.Sprintf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage)}
}
