package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zalando-incubator/zelt/config/zeltcfg"
	"github.com/zalando-incubator/zelt/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zelt",
		Short: "Orchestrate Locust deployments in Kubernetes",
		Long: "zelt deploys a distributed Locust load test (controller, workers, service and ingress)\n" +
			"to Kubernetes from a directory of manifests, rescales its workers and deletes it again.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help by default when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("logging", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	pf.String("log-format", "human", "Log format (human|text|json) (env ZELT_LOG_FORMAT)")
	pf.String("config", "", "Optional configuration file specifying options; its values override flags")
	pf.String("kubeconfig", "", "Path to the kubeconfig file (default $KUBECONFIG or ~/.kube/config)")
	pf.String("context", "", "Kubeconfig context to use")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		format, _ := c.Flags().GetString("log-format")
		if env := os.Getenv("ZELT_LOG_FORMAT"); env != "" { // env overrides flag
			format = env
		}
		levelName, _ := c.Flags().GetString("logging")
		if path, _ := c.Flags().GetString("config"); path != "" {
			var fileCfg zeltcfg.Root
			if err := zeltcfg.LoadInto(path, &fileCfg); err == nil && fileCfg.Logging != "" {
				levelName = fileCfg.Logging
			}
		}
		level, err := logging.ParseLevel(levelName)
		if err != nil {
			return err
		}
		if level > slog.LevelDebug {
			quietKlog()
		}
		l, err := logging.New(format, level)
		if err != nil {
			return err
		}
		l = l.With("runId", uuid.NewString())
		c.SetContext(logging.WithLogger(c.Context(), l))
		return nil
	}

	cmd.AddCommand(newCmdVersion())
	cmd.AddCommand(newCmdFromLocustfile())
	cmd.AddCommand(newCmdRescale())
	cmd.AddCommand(newCmdDelete())
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := newRootCmd()
	root.SetContext(ctx)
	executed, err := root.ExecuteC()
	stop()
	if err != nil {
		var exitCodeErr ExitCodeError
		if errors.As(err, &exitCodeErr) {
			os.Exit(exitCodeErr.Code)
		}
		ctx := root.Context()
		if executed != nil {
			ctx = executed.Context()
		}
		logging.FromContext(ctx).Errorf(ctx, "Failed: %s", err)
		os.Exit(1)
	}
}
