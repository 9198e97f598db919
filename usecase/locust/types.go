// Package locust deploys, rescales and deletes a distributed Locust topology
// described by a directory of Kubernetes manifests.
package locust

import (
	"context"
	"errors"

	"github.com/zalando-incubator/zelt/adapters/kube"
	"github.com/zalando-incubator/zelt/adapters/storage"
	"github.com/zalando-incubator/zelt/config/zeltcfg"
)

// ErrInvalidInput is wrapped by errors about unusable operation inputs.
var ErrInvalidInput = errors.New("invalid input")

// LocalRunner runs Locust on the local machine.
type LocalRunner func(ctx context.Context, locustfile string) error

// UseCase wires the dependencies of Locust operations.
type UseCase struct {
	// Connect reads the cluster credentials. It is called at the start of each
	// cluster-facing step.
	Connect kube.ConnectFunc
	// Timeouts, when set, override the polling parameters of connected clients.
	Timeouts *zeltcfg.Timeouts
	// S3 overrides the object API of S3 storage.
	S3 storage.ObjectAPI
	// RunLocal defaults to running the locust executable.
	RunLocal LocalRunner
}

// connect returns a client with the configured timeouts applied.
func (u *UseCase) connect(ctx context.Context) (*kube.Client, error) {
	if u.Connect == nil {
		return nil, kube.ErrNotInitialized
	}
	c, err := u.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if t := u.Timeouts; t != nil {
		w := c.Waits
		if t.PollInterval > 0 {
			w.Interval = t.PollInterval
		}
		if t.DeleteTimeout > 0 {
			w.DeleteTimeout = t.DeleteTimeout
		}
		if t.PodReadyTimeout > 0 {
			w.PodReadyTimeout = t.PodReadyTimeout
		}
		if t.PodListTimeout > 0 {
			w.PodListTimeout = t.PodListTimeout
		}
		cp := *c
		cp.Waits = w
		c = &cp
	}
	return c, nil
}
