package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	service "github.com/okian/evalsync/internal/app"
	"github.com/okian/evalsync/internal/config"
	"github.com/okian/evalsync/pkg/logger"
	"github.com/okian/evalsync/pkg/metrics"
)

// errRunFailed marks a command that finished with a failure status after
// reporting it through the logger.
var errRunFailed = errors.New("run failed")

// cli holds flag values shared by all commands.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string
	repoDir    string
	dataDir    string
	outputDir  string

	from string
	to   string
	mode string

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "evalsync",
		Short:         "Keep evaluation documents and per-leaderboard Parquet batches in sync",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "YAML config file (defaults to $EVALSYNC_CONFIG)")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&c.logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&c.repoDir, "repo-dir", "", "git working tree holding the documents")
	pf.StringVar(&c.dataDir, "data-dir", "", "document tree root")
	pf.StringVar(&c.outputDir, "output-dir", "", "directory for batches and the manifest")

	root.AddCommand(
		c.addCmd(),
		c.exportCmd(),
		c.syncCmd(),
		c.publishCmd(),
	)
	return root
}

// setup loads configuration, applies explicit flags on top and starts logging.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), c.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, val string) {
		if flags.Changed(name) {
			*dst = val
		}
	}
	override("log-level", &cfg.LogLevel, c.logLevel)
	override("log-format", &cfg.LogFormat, c.logFormat)
	override("repo-dir", &cfg.RepoDir, c.repoDir)
	override("data-dir", &cfg.DataDir, c.dataDir)
	override("output-dir", &cfg.OutputDir, c.outputDir)
	override("from", &cfg.DiffFrom, c.from)
	override("to", &cfg.DiffTo, c.to)
	override("mode", &cfg.Mode, c.mode)
	if err := cfg.Validate(cmd.Context()); err != nil {
		return err
	}

	if err := logger.InitWith(logger.Options{Format: cfg.LogFormat, Writer: cmd.ErrOrStderr()}); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	c.cfg = cfg
	c.log = logger.Get()
	return nil
}

func (c *cli) service(cmd *cobra.Command) (*service.Service, error) {
	return service.NewFromConfig(cmd.Context(), c.cfg, c.log)
}

// flushMetrics writes the metrics textfile if one is configured.
func (c *cli) flushMetrics(cmd *cobra.Command) {
	if c.cfg == nil || c.cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(c.cfg.MetricsTextfile); err != nil {
		c.log.Warn(cmd.Context(), "metrics textfile not written", logger.Error(err))
	}
}

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <json_or_folder> <output.parquet>",
		Short: "Merge a document or a folder of documents into a batch file",
		Long: `Merge one document, or every *.json file below a folder, into a Parquet batch.
Keys are derived from each file's path relative to --data-dir, which must
therefore contain <leaderboard>/<developer>/<model>/<uuid>.json.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer c.flushMetrics(cmd)
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			report, err := svc.Add(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "existing=%d added=%d skipped=%d failed=%d total=%d\n",
				report.Existing, report.Added, report.Skipped, len(report.Failures), report.Total)
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <input.parquet> <output_dir>",
		Short: "Reconstruct the document tree from a batch file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer c.flushMetrics(cmd)
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			n, err := svc.Export(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reconstructed %d documents to %s\n", n, args[1])
			return nil
		},
	}
}

func (c *cli) syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Convert leaderboards changed between two revisions and write the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer c.flushMetrics(cmd)
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Sync(cmd.Context(), c.cfg.DiffFrom, c.cfg.DiffTo)
			fmt.Fprintf(cmd.OutOrStdout(), "status=%s changed=%d converted=%d downloaded=%d errors=%d\n",
				res.Status, len(res.Manifest.Changed), len(res.Manifest.Converted),
				len(res.Manifest.Downloaded), res.Manifest.Errors)
			if err != nil {
				c.log.Error(cmd.Context(), "sync failed", logger.String("run_id", res.RunID), logger.Error(err))
			}
			if !res.Status.OK() {
				return errRunFailed
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&c.from, "from", "", "reference revision (default HEAD~1)")
	f.StringVar(&c.to, "to", "", "current revision (default HEAD)")
	f.StringVar(&c.mode, "mode", "", "leaderboard or paths")
	return cmd
}

func (c *cli) publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Upload converted batches named in the manifest to the remote store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer c.flushMetrics(cmd)
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Publish(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded=%d missing=%d errors=%d\n",
				len(res.Uploaded), len(res.Missing), res.Errors)
			if err != nil {
				c.log.Error(cmd.Context(), "publish failed", logger.Error(err))
				return errRunFailed
			}
			return nil
		},
	}
}
