package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zalando-incubator/zelt/config/zeltcfg"
	"github.com/zalando-incubator/zelt/usecase/locust"
)

// newCmdRescale changes the number of worker pods of a running deployment.
func newCmdRescale() *cobra.Command {
	cfg := zeltcfg.Default()

	cmd := &cobra.Command{
		Use:     "rescale <required-pods>",
		Short:   "Rescale the worker deployment",
		Example: "  zelt rescale 10 -m deployment/",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid <required-pods> %q: %w", args[0], err)
				}
				cfg.RequiredPods = n
			} else if path, _ := cmd.Flags().GetString("config"); path == "" {
				return errors.New("missing required <required-pods> argument")
			}
			if err := resolveConfig(cmd, cfg); err != nil {
				return err
			}

			ctx, cleanup := withCmdRunLogger(cmd.Context(), "rescale", cfg.Manifests)
			defer func() { cleanup(err) }()

			_, err = buildLocustUseCase(cmd, cfg).Rescale(ctx, &locust.RescaleInput{
				ManifestsDir:   cfg.Manifests,
				WorkerReplicas: cfg.RequiredPods,
			})
			return err
		},
	}

	addManifestsFlag(cmd.Flags(), cfg)
	return cmd
}
