package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/zalando-incubator/zelt/adapters/kube"
	"github.com/zalando-incubator/zelt/config/zeltcfg"
	"github.com/zalando-incubator/zelt/usecase/locust"
)

func addManifestsFlag(fs *pflag.FlagSet, cfg *zeltcfg.Root) {
	fs.StringVarP(&cfg.Manifests, "manifests", "m", cfg.Manifests, "Path to manifest files")
}

func addStorageFlags(fs *pflag.FlagSet, cfg *zeltcfg.Root) {
	fs.StringVarP(&cfg.Storage, "storage", "s", cfg.Storage, "Remote locustfile storage method (s3 or configmap)")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "Name of S3 bucket for remote locustfile storage")
	fs.StringVar(&cfg.S3Key, "s3-key", cfg.S3Key, "Name of S3 key for remote locustfile storage")
}

// resolveConfig overlays the --config file, if any, on the flag values in cfg and validates the result.
func resolveConfig(cmd *cobra.Command, cfg *zeltcfg.Root) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := zeltcfg.LoadInto(path, cfg); err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
	}
	return cfg.Validate()
}

// buildLocustUseCase wires the use case with the cluster selected by the global flags.
func buildLocustUseCase(cmd *cobra.Command, cfg *zeltcfg.Root) *locust.UseCase {
	kubeconfig, _ := cmd.Flags().GetString("kubeconfig")
	kubeContext, _ := cmd.Flags().GetString("context")
	creds := kube.Credentials{Kubeconfig: kubeconfig, Context: kubeContext}
	t := cfg.Timeouts
	return &locust.UseCase{
		Connect:  kube.Connector(creds, &kube.Options{UserAgent: "zelt/" + version}),
		Timeouts: &t,
	}
}
