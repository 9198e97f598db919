package kube

import (
	"context"
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/zalando-incubator/zelt/domain/manifest"
	"github.com/zalando-incubator/zelt/internal/logging"
	"github.com/zalando-incubator/zelt/internal/poll"
)

// target identifies the resource(s) affected by a delete. An empty Name
// denotes every resource of Kind in Namespace.
type target struct {
	Kind      string
	Namespace string
	Name      string
}

func foreground() metav1.DeleteOptions {
	p := metav1.DeletePropagationForeground
	return metav1.DeleteOptions{PropagationPolicy: &p}
}

func (c *Client) logger(ctx context.Context, kind, ns, name string) logging.Logger {
	l := logging.FromContext(ctx).With("kind", kind, "ns", ns)
	if name != "" {
		l = l.With("name", name)
	}
	return l
}

// deleteAndWait issues the delete call and then polls count until it reports
// zero. A not-found delete counts as success and skips the wait.
func (c *Client) deleteAndWait(ctx context.Context, t target, del func(ctx context.Context) error, count func(ctx context.Context) (int, error)) error {
	logger := c.logger(ctx, t.Kind, t.Namespace, t.Name)
	msgSym := "KubeClient:Delete"
	logger.Info(ctx, msgSym+"/s")
	if err := del(ctx); err != nil {
		if apierrors.IsNotFound(err) {
			logger.Debug(ctx, msgSym+"/skip", "reason", Reason(err))
			return nil
		}
		logger.Error(ctx, msgSym+"/efail", "reason", Reason(err))
		return &ResourceError{Op: "delete", Kind: t.Kind, Namespace: t.Namespace, Name: t.Name, Err: err}
	}
	if err := c.WaitAbsent(ctx, t.Kind, t.Namespace, t.Name, count); err != nil {
		logger.Error(ctx, msgSym+"/efail", "reason", Reason(err))
		return err
	}
	logger.Info(ctx, msgSym+"/eok")
	return nil
}

// WaitAbsent polls count until it reports zero or a not-found error.
// Other probe errors end the wait immediately.
func (c *Client) WaitAbsent(ctx context.Context, kind, namespace, name string, count func(ctx context.Context) (int, error)) error {
	logger := c.logger(ctx, kind, namespace, name)
	_, err := poll.Until(ctx, c.Waits.deletePolicy(),
		func(ctx context.Context) (int, error) {
			n, err := count(ctx)
			if apierrors.IsNotFound(err) {
				return 0, nil
			}
			return n, err
		},
		func(n int) bool {
			if n > 0 {
				logger.Debug(ctx, "KubeClient:WaitAbsent/pending", "found", n)
			}
			return n > 0
		},
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, poll.ErrExhausted) {
		err = fmt.Errorf("%w: %w", ErrStillPresent, err)
	}
	return &ResourceError{Op: "wait for deletion of", Kind: kind, Namespace: namespace, Name: name, Err: err}
}

// DeleteNamespace deletes a Namespace and waits until it can no longer be read.
func (c *Client) DeleteNamespace(ctx context.Context, name string) error {
	if err := c.ready(); err != nil {
		return err
	}
	api := c.Clientset.CoreV1().Namespaces()
	return c.deleteAndWait(ctx, target{Kind: manifest.KindNamespace.String(), Name: name},
		func(ctx context.Context) error {
			return api.Delete(ctx, name, foreground())
		},
		func(ctx context.Context) (int, error) {
			if _, err := api.Get(ctx, name, metav1.GetOptions{}); err != nil {
				return 0, err
			}
			return 1, nil
		},
	)
}

// DeleteService deletes a Service and waits until the namespace has no Services.
func (c *Client) DeleteService(ctx context.Context, namespace, name string) error {
	if err := c.ready(); err != nil {
		return err
	}
	api := c.Clientset.CoreV1().Services(namespace)
	return c.deleteAndWait(ctx, target{Kind: manifest.KindService.String(), Namespace: namespace, Name: name},
		func(ctx context.Context) error {
			return api.Delete(ctx, name, foreground())
		},
		func(ctx context.Context) (int, error) {
			l, err := api.List(ctx, metav1.ListOptions{})
			if err != nil {
				return 0, err
			}
			return len(l.Items), nil
		},
	)
}

// DeleteIngress deletes an Ingress and waits until the namespace has no Ingresses.
func (c *Client) DeleteIngress(ctx context.Context, namespace, name string) error {
	if err := c.ready(); err != nil {
		return err
	}
	api := c.Clientset.NetworkingV1().Ingresses(namespace)
	return c.deleteAndWait(ctx, target{Kind: manifest.KindIngress.String(), Namespace: namespace, Name: name},
		func(ctx context.Context) error {
			return api.Delete(ctx, name, foreground())
		},
		func(ctx context.Context) (int, error) {
			l, err := api.List(ctx, metav1.ListOptions{})
			if err != nil {
				return 0, err
			}
			return len(l.Items), nil
		},
	)
}

// DeleteDeployments deletes every Deployment in namespace and waits until none is listed.
func (c *Client) DeleteDeployments(ctx context.Context, namespace string) error {
	if err := c.ready(); err != nil {
		return err
	}
	api := c.Clientset.AppsV1().Deployments(namespace)
	return c.deleteAndWait(ctx, target{Kind: manifest.KindDeployment.String(), Namespace: namespace},
		func(ctx context.Context) error {
			return api.DeleteCollection(ctx, foreground(), metav1.ListOptions{})
		},
		func(ctx context.Context) (int, error) {
			l, err := api.List(ctx, metav1.ListOptions{})
			if err != nil {
				return 0, err
			}
			return len(l.Items), nil
		},
	)
}
