package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"referralreport/internal/config"
	"referralreport/internal/metrics"
	"referralreport/internal/metrics/datadog"
	"referralreport/internal/metrics/prompush"

	// register every SQL backend with the storage factory; the config picks one.
	_ "referralreport/internal/storage/all"
)

// cli holds flag values and the logger shared by all commands.
type cli struct {
	cfgPath  string
	envFile  string
	verbose  bool
	logLevel string

	metricsBackend string
	pushgatewayURL string
	datadogAddr    string

	logger *zap.Logger
	out    io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "referral-report",
		Short:         "Build the referral business-logic report from seven source exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(c.envFile); err != nil {
				return err
			}
			logger, err := buildLogger(c.verbose, c.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&c.cfgPath, "config", "c", "referral.yaml", "pipeline config file (YAML or JSON)")
	pf.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before the config; missing is fine")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides --verbose")

	root.AddCommand(c.runCmd(), c.validateCmd(), c.profileCmd(), c.initConfigCmd())
	return root
}

func buildLogger(verbose bool, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

// loadPipeline reads the config and reports its issues. Error-severity issues
// fail the load.
func (c *cli) loadPipeline() (config.Pipeline, error) {
	p, err := config.Load(c.cfgPath)
	if err != nil {
		return p, err
	}
	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			c.logger.Error("config: "+iss.Message, zap.String("path", iss.Path))
			continue
		}
		c.logger.Warn("config: "+iss.Message, zap.String("path", iss.Path))
	}
	if config.HasErrors(issues) {
		return p, fmt.Errorf("configuration %s is invalid", c.cfgPath)
	}
	return p, nil
}

func (c *cli) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and write the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadPipeline()
			if err != nil {
				return err
			}
			if c.metricsBackend != "" {
				p.Metrics.Backend = c.metricsBackend
			}
			if c.pushgatewayURL != "" {
				p.Metrics.PushgatewayURL = c.pushgatewayURL
			}
			if c.datadogAddr != "" {
				p.Metrics.DatadogAddr = c.datadogAddr
			}

			restore := setupMetrics(p, c.logger)
			defer restore()

			_, err = runPipeline(cmd.Context(), p, c.logger, cmd.OutOrStdout())
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&c.metricsBackend, "metrics-backend", "", "metrics backend: pushgateway, datadog or none (overrides config)")
	f.StringVar(&c.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides config)")
	f.StringVar(&c.datadogAddr, "datadog-addr", "", "DogStatsD address (overrides config)")
	return cmd
}

// setupMetrics installs the configured backend and returns a func that
// flushes it and restores the previous one.
func setupMetrics(p config.Pipeline, log *zap.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:      p.Metrics.DatadogAddr,
			Namespace: "referral.",
			Tags:      []string{"job:" + p.Job},
		})
	case "", "none":
		log.Debug("metrics: disabled")
		return func() {}
	default:
		log.Warn("metrics: unknown backend; metrics disabled", zap.String("backend", p.Metrics.Backend))
		return func() {}
	}
	if err != nil {
		log.Warn("metrics: backend init failed; using nop", zap.String("backend", p.Metrics.Backend), zap.Error(err))
		return func() {}
	}

	log.Info("metrics: enabled", zap.String("backend", p.Metrics.Backend))
	prev := metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush failed", zap.Error(err))
		}
		metrics.SetBackend(prev)
	}
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Lint the pipeline config and exit non-zero on errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Load(c.cfgPath)
			if err != nil {
				return err
			}
			issues := config.ValidatePipeline(p)
			w := cmd.OutOrStdout()
			for _, iss := range issues {
				fmt.Fprintln(w, iss.Error())
			}
			if config.HasErrors(issues) {
				return fmt.Errorf("configuration %s is invalid", c.cfgPath)
			}
			fmt.Fprintf(w, "configuration %s is valid\n", c.cfgPath)
			return nil
		},
	}
}

func (c *cli) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Load the sources and print their null and cardinality profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadPipeline()
			if err != nil {
				return err
			}
			r := newRunner(p, c.logger, cmd.OutOrStdout())
			raw, err := r.loadSources(cmd.Context())
			if err != nil {
				return &StageError{Stage: stageLoad, Err: err}
			}
			return r.profile(raw)
		},
	}
}

func (c *cli) initConfigCmd() *cobra.Command {
	var (
		dataDir string
		format  string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Print a sample pipeline config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" && output != "" {
				format = filepath.Ext(output)
				if format != "" {
					format = format[1:]
				}
			}
			b, err := config.Marshal(config.Sample(dataDir), format)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			if err := os.WriteFile(output, b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			c.logger.Info("init-config: written", zap.String("path", output))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&dataDir, "data-dir", "data", "directory holding the seven CSV exports")
	f.StringVar(&format, "format", "", "yaml or json (default from --output extension, else yaml)")
	f.StringVarP(&output, "output", "o", "", "destination file; stdout when empty")
	return cmd
}
