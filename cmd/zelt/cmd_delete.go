package main

import (
	"github.com/spf13/cobra"

	"github.com/zalando-incubator/zelt/config/zeltcfg"
	"github.com/zalando-incubator/zelt/usecase/locust"
)

// newCmdDelete removes a Locust deployment from Kubernetes.
func newCmdDelete() *cobra.Command {
	cfg := zeltcfg.Default()

	cmd := &cobra.Command{
		Use:     "delete",
		Short:   "Delete the Locust deployment and its locustfile",
		Example: "  zelt delete -m deployment/",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := resolveConfig(cmd, cfg); err != nil {
				return err
			}

			ctx, cleanup := withCmdRunLogger(cmd.Context(), "delete", cfg.Manifests)
			defer func() { cleanup(err) }()

			_, err = buildLocustUseCase(cmd, cfg).Delete(ctx, &locust.DeleteInput{
				ManifestsDir: cfg.Manifests,
				Storage:      cfg.Storage,
				Bucket:       cfg.S3Bucket,
				Key:          cfg.S3Key,
			})
			return err
		},
	}

	addManifestsFlag(cmd.Flags(), cfg)
	addStorageFlags(cmd.Flags(), cfg)
	return cmd
}
