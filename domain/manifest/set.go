package manifest

import (
	"context"
	"fmt"
	"sort"

	"github.com/zalando-incubator/zelt/internal/logging"
)

// Set is the validated bundle of manifests for one Locust deployment.
type Set struct {
	Namespace  *Manifest
	Service    *Manifest
	Ingress    *Manifest
	Controller *Manifest
	// Worker is nil for a standalone controller.
	Worker *Manifest
}

// Deployments returns the controller followed by the worker, if any.
func (s *Set) Deployments() []*Manifest {
	if s.Worker == nil {
		return []*Manifest{s.Controller}
	}
	return []*Manifest{s.Controller, s.Worker}
}

// FromDirectory loads and classifies all manifests in dir.
func FromDirectory(ctx context.Context, dir string) (*Set, error) {
	manifests, err := LoadDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	return Classify(ctx, manifests)
}

// Classify groups manifests by kind and role and checks that they describe
// exactly one namespace, service, ingress and controller deployment, plus at
// most one worker deployment.
func Classify(ctx context.Context, manifests []*Manifest) (*Set, error) {
	logger := logging.FromContext(ctx)

	groups := map[Kind][]*Manifest{}
	for _, m := range manifests {
		k, err := m.Kind()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifestSet, describe(m), err)
		}
		if k == KindOther {
			logger.Warn(ctx, "unsupported resource kind converted into Other", "kind", m.RawKind(), "source", m.Source())
		}
		groups[k] = append(groups[k], m)
	}

	for _, k := range []Kind{KindNamespace, KindService, KindIngress} {
		switch n := len(groups[k]); {
		case n == 0:
			return nil, fmt.Errorf("%w: missing required resource of kind %q (got 0)", ErrInvalidManifestSet, k)
		case n > 1:
			return nil, fmt.Errorf("%w: expected exactly one resource of kind %q but got %d", ErrInvalidManifestSet, k, n)
		}
	}

	deployments := groups[KindDeployment]
	if len(deployments) == 0 {
		return nil, fmt.Errorf("%w: missing required resource of kind %q (got 0)", ErrInvalidManifestSet, KindDeployment)
	}

	var controllers, workers, others []*Manifest
	for _, d := range deployments {
		switch d.Role() {
		case RoleController:
			controllers = append(controllers, d)
		case RoleWorker:
			workers = append(workers, d)
		default:
			others = append(others, d)
		}
	}

	if len(deployments) > 1 {
		if len(controllers) == 0 || len(workers) == 0 {
			return nil, fmt.Errorf("%w: distributed Locust deployments must have roles covering [%s %s], got only %v",
				ErrInvalidManifestSet, RoleController, RoleWorker, roleNames(deployments))
		}
		if len(others) > 0 {
			return nil, fmt.Errorf("%w: unexpected deployment %s without a %s or %s role",
				ErrInvalidManifestSet, describe(others[0]), RoleController, RoleWorker)
		}
	} else if len(others) == 1 {
		// A lone unlabeled deployment runs Locust standalone.
		controllers = others
	}

	if len(controllers) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one deployment with role %q but got %d", ErrInvalidManifestSet, RoleController, len(controllers))
	}
	if len(workers) > 1 {
		return nil, fmt.Errorf("%w: expected at most one deployment with role %q but got %d", ErrInvalidManifestSet, RoleWorker, len(workers))
	}

	set := &Set{
		Namespace:  groups[KindNamespace][0],
		Service:    groups[KindService][0],
		Ingress:    groups[KindIngress][0],
		Controller: controllers[0],
	}
	if len(workers) == 1 {
		set.Worker = workers[0]
	}
	return set, nil
}

func roleNames(deployments []*Manifest) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, d := range deployments {
		r := d.Role().String()
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		names = append(names, r)
	}
	sort.Strings(names)
	return names
}

func describe(m *Manifest) string {
	if name, err := m.Name(); err == nil {
		return fmt.Sprintf("%q", name)
	}
	if m.Source() != "" {
		return m.Source()
	}
	return "manifest"
}
