package locust

import (
	"context"
	"fmt"

	"github.com/zalando-incubator/zelt/adapters/storage"
	"github.com/zalando-incubator/zelt/domain/manifest"
	"github.com/zalando-incubator/zelt/internal/logging"
)

// CreateResources creates the namespace, uploads the locustfile, then creates
// the controller, waits for its pod, and creates the worker, service and
// ingress. The first failure aborts the sequence; nothing is rolled back.
func (u *UseCase) CreateResources(ctx context.Context, set *manifest.Set, store storage.Storage, locustfile string) error {
	logger := logging.FromContext(ctx)

	if err := checkNames(set); err != nil {
		return err
	}
	ns, _ := set.Controller.Namespace()
	selector, err := set.Controller.Labels()
	if err != nil {
		return fmt.Errorf("controller deployment: %w", err)
	}

	kc, err := u.connect(ctx)
	if err != nil {
		return err
	}
	if err := kc.CreateNamespace(ctx, set.Namespace); err != nil {
		return err
	}
	if err := store.Upload(ctx, locustfile); err != nil {
		return err
	}
	if err := kc.CreateDeployment(ctx, set.Controller); err != nil {
		return err
	}
	if err := kc.WaitPodReady(ctx, ns, selector); err != nil {
		return err
	}
	if set.Worker != nil {
		if err := kc.CreateDeployment(ctx, set.Worker); err != nil {
			return err
		}
	}
	if err := kc.CreateService(ctx, set.Service); err != nil {
		return err
	}
	if err := kc.CreateIngress(ctx, set.Ingress); err != nil {
		return err
	}
	logger.Info(ctx, "resources created", "ns", ns)
	return nil
}

// DeleteResources removes the locustfile, then deletes the ingress, service,
// every deployment and finally the namespace. Resources that are already gone
// are skipped.
func (u *UseCase) DeleteResources(ctx context.Context, set *manifest.Set, store storage.Storage) error {
	logger := logging.FromContext(ctx)

	ns, err := set.Namespace.Name()
	if err != nil {
		return fmt.Errorf("namespace: %w", err)
	}
	ingress, err := set.Ingress.Name()
	if err != nil {
		return fmt.Errorf("ingress: %w", err)
	}
	service, err := set.Service.Name()
	if err != nil {
		return fmt.Errorf("service: %w", err)
	}

	logger.Info(ctx, "deleting resources", "ns", ns)
	kc, err := u.connect(ctx)
	if err != nil {
		return err
	}
	if err := store.Delete(ctx); err != nil {
		return err
	}
	if err := kc.DeleteIngress(ctx, ns, ingress); err != nil {
		return err
	}
	if err := kc.DeleteService(ctx, ns, service); err != nil {
		return err
	}
	if err := kc.DeleteDeployments(ctx, ns); err != nil {
		return err
	}
	return kc.DeleteNamespace(ctx, ns)
}

// checkNames reports the first manifest lacking the name or namespace its
// create call needs.
func checkNames(set *manifest.Set) error {
	if _, err := set.Namespace.Name(); err != nil {
		return fmt.Errorf("namespace: %w", err)
	}
	namespaced := []struct {
		role string
		m    *manifest.Manifest
	}{
		{"controller deployment", set.Controller},
		{"worker deployment", set.Worker},
		{"service", set.Service},
		{"ingress", set.Ingress},
	}
	for _, r := range namespaced {
		if r.m == nil {
			continue
		}
		if _, err := r.m.Name(); err != nil {
			return fmt.Errorf("%s: %w", r.role, err)
		}
		if _, err := r.m.Namespace(); err != nil {
			return fmt.Errorf("%s: %w", r.role, err)
		}
	}
	return nil
}
