package main

import (
	"context"
	"errors"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/zalando-incubator/zelt/config/zeltcfg"
	"github.com/zalando-incubator/zelt/usecase/locust"
)

// newCmdFromLocustfile deploys Locust with an existing locustfile.
func newCmdFromLocustfile() *cobra.Command {
	cfg := zeltcfg.Default()

	cmd := &cobra.Command{
		Use:   "from-locustfile <locustfile>",
		Short: "Deploy Locust with a locustfile, in Kubernetes or locally",
		Example: "  zelt from-locustfile tests/locustfile.py -m deployment/ -w 3\n" +
			"  zelt from-locustfile tests/locustfile.py --local\n" +
			"  zelt from-locustfile --config zelt.yml",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(args) == 1 {
				cfg.Locustfile = args[0]
			}
			if err := resolveConfig(cmd, cfg); err != nil {
				return err
			}
			if cfg.Locustfile == "" {
				return errors.New("missing required <locustfile> argument")
			}

			ctx, cleanup := withCmdRunLogger(cmd.Context(), "from-locustfile", cfg.Locustfile)
			defer func() { cleanup(err) }()

			uc := buildLocustUseCase(cmd, cfg)
			uc.RunLocal = runLocust
			_, err = uc.Deploy(ctx, &locust.DeployInput{
				Locustfile:     cfg.Locustfile,
				ManifestsDir:   cfg.Manifests,
				WorkerReplicas: cfg.WorkerPods,
				Clean:          cfg.Clean,
				Local:          cfg.Local,
				Storage:        cfg.Storage,
				Bucket:         cfg.S3Bucket,
				Key:            cfg.S3Key,
			})
			return err
		},
	}

	fs := cmd.Flags()
	addManifestsFlag(fs, cfg)
	fs.IntVarP(&cfg.WorkerPods, "worker-pods", "w", cfg.WorkerPods, "Number of worker pods to deploy")
	addStorageFlags(fs, cfg)
	fs.BoolVarP(&cfg.Clean, "clean", "c", cfg.Clean, "Delete and redeploy remote resources")
	fs.BoolVarP(&cfg.Local, "local", "l", cfg.Local, "Run Locust locally")
	return cmd
}

// runLocust runs locust locally and reports its non-zero exit status as an ExitCodeError.
func runLocust(ctx context.Context, locustfile string) error {
	err := locust.RunLocust(ctx, locustfile)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExitCodeError{Code: exitErr.ExitCode()}
	}
	return err
}
