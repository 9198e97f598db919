package locust

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/zalando-incubator/zelt/adapters/storage"
	"github.com/zalando-incubator/zelt/domain/manifest"
	"github.com/zalando-incubator/zelt/internal/logging"
)

// LocalDashboardURL is where a locally run Locust serves its web UI.
const LocalDashboardURL = "http://localhost:8089/"

// DeployInput is the input of Deploy.
type DeployInput struct {
	// Locustfile is the path of the Locust test script.
	Locustfile string
	// ManifestsDir is the directory of Kubernetes manifests. Ignored when Local is set.
	ManifestsDir string
	// WorkerReplicas is the number of worker pods.
	WorkerReplicas int
	// Clean deletes existing resources before creating them.
	Clean bool
	// Local runs Locust on this machine instead of in the cluster.
	Local bool
	// Storage names the locustfile storage method. Empty means configmap.
	Storage string
	// Bucket and Key locate the locustfile for s3 storage.
	Bucket string
	Key    string
}

// DeployOutput is the outcome of Deploy.
type DeployOutput struct {
	// DashboardURL is the address of the Locust web UI. It is empty when the
	// ingress has no host.
	DashboardURL string
}

// Deploy runs Locust with the given locustfile, either locally or as a
// Kubernetes deployment described by the manifests.
func (u *UseCase) Deploy(ctx context.Context, in *DeployInput) (*DeployOutput, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: DeployInput is required", ErrInvalidInput)
	}
	logger := logging.FromContext(ctx)

	if in.Local {
		if in.ManifestsDir != "" {
			logger.Warn(ctx, "mutually incompatible options 'local' and 'manifests' specified, defaulting to running locally")
		}
		logger.Info(ctx, "deploying Locust locally", "locustfile", in.Locustfile, "dashboard", LocalDashboardURL)
		if err := u.runLocal(ctx, in.Locustfile); err != nil {
			return nil, err
		}
		return &DeployOutput{DashboardURL: LocalDashboardURL}, nil
	}

	if in.ManifestsDir == "" {
		return nil, fmt.Errorf("%w: missing required 'manifests' option", ErrInvalidInput)
	}
	replicas, err := workerReplicas(in.WorkerReplicas)
	if err != nil {
		return nil, err
	}
	if fi, err := os.Stat(in.Locustfile); err != nil || fi.IsDir() {
		return nil, fmt.Errorf("%w: locustfile %q is not a readable file", ErrInvalidInput, in.Locustfile)
	}
	method, err := parseMethod(in.Storage)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "deploying Locust in Kubernetes", "locustfile", in.Locustfile, "workers", replicas)

	set, err := manifest.FromDirectory(ctx, in.ManifestsDir)
	if err != nil {
		return nil, err
	}
	store, err := method.Build(storage.BuildInput{Set: set, Bucket: in.Bucket, Key: in.Key, Connect: u.connect, S3: u.S3})
	if err != nil {
		return nil, err
	}
	if in.Clean {
		if err := u.DeleteResources(ctx, set, store); err != nil {
			return nil, err
		}
	}
	if err := UpdateWorkerReplicas(set, replicas); err != nil {
		return nil, err
	}
	if err := u.CreateResources(ctx, set, store, in.Locustfile); err != nil {
		return nil, err
	}

	url, err := dashboardURL(set.Ingress)
	if err != nil {
		logger.Warn(ctx, "dashboard URL unavailable, ingress has no host", "err", err)
		return &DeployOutput{}, nil
	}
	logger.Info(ctx, "open the Locust dashboard", "url", url)
	return &DeployOutput{DashboardURL: url}, nil
}

// DeleteInput is the input of Delete.
type DeleteInput struct {
	ManifestsDir string
	Storage      string
	Bucket       string
	Key          string
}

// DeleteOutput is the outcome of Delete.
type DeleteOutput struct{}

// Delete removes every resource of the deployment described by the manifests.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) (*DeleteOutput, error) {
	if in == nil || in.ManifestsDir == "" {
		return nil, fmt.Errorf("%w: missing required 'manifests' option", ErrInvalidInput)
	}
	method, err := parseMethod(in.Storage)
	if err != nil {
		return nil, err
	}
	set, err := manifest.FromDirectory(ctx, in.ManifestsDir)
	if err != nil {
		return nil, err
	}
	store, err := method.Build(storage.BuildInput{Set: set, Bucket: in.Bucket, Key: in.Key, Connect: u.connect, S3: u.S3})
	if err != nil {
		return nil, err
	}
	if err := u.DeleteResources(ctx, set, store); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info(ctx, "deletion complete")
	return &DeleteOutput{}, nil
}

func parseMethod(s string) (storage.Method, error) {
	if s == "" {
		return storage.MethodConfigMap, nil
	}
	return storage.ParseMethod(s)
}

// dashboardURL derives the Locust web UI address from the ingress host.
func dashboardURL(ingress *manifest.Manifest) (string, error) {
	host, err := ingress.Host()
	if err != nil {
		return "", err
	}
	scheme := "http"
	if spec, _ := ingress.Body()["spec"].(map[string]any); spec != nil {
		if tls, _ := spec["tls"].([]any); len(tls) > 0 {
			scheme = "https"
		}
	}
	return scheme + "://" + host, nil
}

func (u *UseCase) runLocal(ctx context.Context, locustfile string) error {
	if u.RunLocal != nil {
		return u.RunLocal(ctx, locustfile)
	}
	return RunLocust(ctx, locustfile)
}

// RunLocust runs the locust executable in the foreground. The host is unused
// when the locustfile requests full URLs.
func RunLocust(ctx context.Context, locustfile string) error {
	cmd := exec.CommandContext(ctx, "locust", "-f", locustfile, "--host=unused")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run locust: %w", err)
	}
	return nil
}
