package locust

import (
	"context"
	"fmt"
	"math"

	"github.com/zalando-incubator/zelt/domain/manifest"
	"github.com/zalando-incubator/zelt/internal/logging"
)

// UpdateWorkerReplicas sets the replica count of the worker manifest, if any.
func UpdateWorkerReplicas(set *manifest.Set, replicas int32) error {
	if set.Worker == nil {
		return nil
	}
	return set.Worker.SetWorkerReplicas(replicas)
}

// RescaleWorker sets the replica count of the live worker deployment.
// Without a worker manifest it logs an error and returns nil.
func (u *UseCase) RescaleWorker(ctx context.Context, set *manifest.Set, replicas int32) error {
	logger := logging.FromContext(ctx)
	if set.Worker == nil {
		logger.Error(ctx, "missing worker manifest, only worker deployments can be rescaled")
		return nil
	}
	ns, err := set.Worker.Namespace()
	if err != nil {
		return fmt.Errorf("worker deployment: %w", err)
	}
	name, err := set.Worker.Name()
	if err != nil {
		return fmt.Errorf("worker deployment: %w", err)
	}

	kc, err := u.connect(ctx)
	if err != nil {
		return err
	}
	_, err = kc.RescaleDeployment(ctx, ns, name, replicas)
	return err
}

// RescaleInput is the input of Rescale.
type RescaleInput struct {
	// ManifestsDir is the directory of Kubernetes manifests.
	ManifestsDir string
	// WorkerReplicas is the desired number of worker pods.
	WorkerReplicas int
}

// RescaleOutput is the outcome of Rescale.
type RescaleOutput struct {
	// Rescaled is false when the manifests have no worker deployment.
	Rescaled bool
}

// Rescale changes the number of worker pods of a running deployment.
func (u *UseCase) Rescale(ctx context.Context, in *RescaleInput) (*RescaleOutput, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: RescaleInput is required", ErrInvalidInput)
	}
	replicas, err := workerReplicas(in.WorkerReplicas)
	if err != nil {
		return nil, err
	}
	if in.ManifestsDir == "" {
		return nil, fmt.Errorf("%w: missing required 'manifests' option", ErrInvalidInput)
	}

	set, err := manifest.FromDirectory(ctx, in.ManifestsDir)
	if err != nil {
		return nil, err
	}
	if err := UpdateWorkerReplicas(set, replicas); err != nil {
		return nil, err
	}
	if err := u.RescaleWorker(ctx, set, replicas); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info(ctx, "rescaling complete", "replicas", replicas)
	return &RescaleOutput{Rescaled: set.Worker != nil}, nil
}

func workerReplicas(n int) (int32, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: expected a non-negative number of pods, got %d", ErrInvalidInput, n)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: too many pods: %d", ErrInvalidInput, n)
	}
	return int32(n), nil
}
