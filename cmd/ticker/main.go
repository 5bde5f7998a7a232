package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"ticker_client/internal/feature/pricing/adapters/nomics"
	"ticker_client/internal/platform/logger"
)

const (
	flagAPIKey    = "api-key"
	flagURL       = "url"
	flagQuery     = "query"
	flagPrecision = "precision"
	flagAddr      = "addr"
)

func main() {
	log := logger.New(os.Stderr)

	// .envを読み込む
	if err := godotenv.Load(); err != nil {
		log.Debug(".env not found; using system environment variables")
	}

	app := newApp(os.Stdout, os.Stderr, log)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// newApp はCLIアプリケーションを組み立てます。出力先はテストから差し替えられます。
func newApp(stdout, stderr io.Writer, log *slog.Logger) *cli.App {
	r := &runner{log: log}

	return &cli.App{
		Name:      "ticker",
		Usage:     "query currency prices from the Nomics ticker API",
		Writer:    stdout,
		ErrWriter: stderr,
		// key=value の値にカンマを含められるようにする
		DisableSliceFlagSeparator: true,
		HideHelpCommand:           true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagAPIKey,
				Aliases:  []string{"k"},
				Usage:    "Nomics API key",
				Required: true,
				EnvVars:  []string{"NOMICS_API_KEY"},
			},
			&cli.StringFlag{
				Name:    flagURL,
				Aliases: []string{"u"},
				Usage:   "API base URL",
				Value:   nomics.DefaultBaseURL,
				EnvVars: []string{"NOMICS_BASE_URL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "print every field of the given tickers",
				ArgsUsage: "[-q key=value]... [TICKER...]",
				Flags:     []cli.Flag{queryFlag()},
				Action:    r.get,
			},
			{
				Name:      "get-project",
				Usage:     "print only the named fields of the given tickers",
				ArgsUsage: "[-q key=value]... PROJECTION[,PROJECTION...] [TICKER...]",
				Flags:     []cli.Flag{queryFlag()},
				Action:    r.getProject,
			},
			{
				Name:      "convert-fiat",
				Usage:     "print the price of TICKER in FIAT",
				ArgsUsage: "[--precision N] TICKER FIAT",
				Flags:     []cli.Flag{precisionFlag()},
				Action:    r.convertFiat,
			},
			{
				Name:      "exchange",
				Usage:     "print how much TO one FROM buys",
				ArgsUsage: "[--precision N] FROM TO",
				Flags:     []cli.Flag{precisionFlag()},
				Action:    r.exchange,
			},
			{
				Name:  "serve",
				Usage: "serve the pricing operations over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagAddr, Usage: "listen address", Value: ":8080", EnvVars: []string{"ADDR"}},
				},
				Action: r.serve,
			},
		},
		Action: rootAction,
	}
}

func queryFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    flagQuery,
		Aliases: []string{"q"},
		Usage:   "extra API query parameter as key=value (repeatable)",
	}
}

func precisionFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  flagPrecision,
		Usage: "round the printed rate to N decimal places (negative prints the full value)",
		Value: -1,
	}
}

// rootAction はサブコマンドが指定されなかった、または未知のサブコマンドが指定された場合に呼ばれます。
func rootAction(c *cli.Context) error {
	if c.NArg() == 0 {
		fmt.Fprintln(c.App.Writer, "Please specify a command to use")
		return nil
	}
	fmt.Fprintln(c.App.Writer, "Unknown command")
	_ = cli.ShowAppHelp(c)
	return usageError{msg: fmt.Sprintf("unknown command %q", c.Args().First())}
}

// usageError は引数の誤りを表し、終了コード2になります。
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func exitCode(err error) int {
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}
