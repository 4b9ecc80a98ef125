package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"misisid/lib/configutil"
	"misisid/lib/restyutil"
	"misisid/lib/scrapers/misis"
	"misisid/lib/telemetry"

	"github.com/spf13/cobra"
)

// Config holds optional portal overrides read from misisid.json5,
// merged with misisid.local.json5 when present.
type Config struct {
	BaseUrl        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxRetries     int    `json:"max_retries"`
}

var (
	login    string
	password string
	format   string
	verbose  bool
)

func init() {
	rootCmd.Flags().StringVar(&login, "login", "", "Login for the MISIS personal account.")
	rootCmd.Flags().StringVar(&password, "password", "", "Password for the MISIS personal account.")
	rootCmd.Flags().StringVar(&format, "format", "text", "Output format, one of: text, json.")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging and request dumps.")
	rootCmd.MarkFlagRequired("login")
	rootCmd.MarkFlagRequired("password")
}

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   "misisid --login <login> --password <password> [--format text|json] [--verbose]",
	Short: "misisid fetches student info from the MISIS personal account portal.",
	Args:  cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
		// telemetry.json5 is optional for the CLI, without it the
		// default no-op otel providers stay in place
		_, err := telemetry.SetupFromEnv(cmd.Context(), "misisid")
		if err != nil {
			slog.Debug("otel telemetry disabled", "err", err)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if format != "text" && format != "json" {
			fatal("invalid output format", fmt.Errorf("expected text or json, got %q", format))
		}

		cfg, err := configutil.ReadConfig[Config]("misisid.json5")
		if err != nil && !os.IsNotExist(err) {
			fatal("failed to read config", err)
		}

		var output restyutil.InstrumentOutput
		if verbose {
			output = restyutil.NewFilesystemOutput(".dev/resty/misisid")
		}

		client, err := misis.NewClient(misis.ClientOptions{
			BaseUrl:          cfg.BaseUrl,
			Timeout:          time.Duration(cfg.TimeoutSeconds) * time.Second,
			MaxRetries:       cfg.MaxRetries,
			InstrumentOutput: output,
		})
		if err != nil {
			fatal("failed to initialize portal client", err)
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute*2)
		defer cancel()

		_, err = client.Authenticate(ctx, login, password)
		if err != nil {
			fatal("failed to authenticate", err)
		}

		info, err := client.GetStudentInfo(ctx)
		if err != nil {
			fatal("failed to fetch student info", err)
		}

		switch format {
		case "json":
			err = renderJson(os.Stdout, info)
			if err != nil {
				fatal("failed to serialize student info", err)
			}
		default:
			renderText(os.Stdout, info)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
