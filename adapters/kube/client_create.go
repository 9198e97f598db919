package kube

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/zalando-incubator/zelt/domain/manifest"
)

// decode converts a manifest body into a typed API object and returns its namespace and name.
func decode(m *manifest.Manifest, kind manifest.Kind, obj metav1.Object, namespaced bool) (string, string, error) {
	name, err := m.Name()
	if err != nil {
		return "", "", err
	}
	ns := ""
	if namespaced {
		if ns, err = m.Namespace(); err != nil {
			return "", name, err
		}
	}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(m.Body(), obj); err != nil {
		return ns, name, fmt.Errorf("%w: convert %s %q: %v", manifest.ErrInvalidManifest, kind, name, err)
	}
	obj.SetNamespace(ns)
	return ns, name, nil
}

// create logs and runs a single create call.
func (c *Client) create(ctx context.Context, kind manifest.Kind, ns, name string, call func(ctx context.Context) error) error {
	logger := c.logger(ctx, kind.String(), ns, name)
	msgSym := "KubeClient:Create"
	logger.Info(ctx, msgSym+"/s")
	if err := call(ctx); err != nil {
		logger.Error(ctx, msgSym+"/efail", "reason", Reason(err))
		return &ResourceError{Op: "create", Kind: kind.String(), Namespace: ns, Name: name, Err: err}
	}
	logger.Info(ctx, msgSym+"/eok")
	return nil
}

// CreateNamespace creates the Namespace described by m.
func (c *Client) CreateNamespace(ctx context.Context, m *manifest.Manifest) error {
	if err := c.ready(); err != nil {
		return err
	}
	obj := &corev1.Namespace{}
	_, name, err := decode(m, manifest.KindNamespace, obj, false)
	if err != nil {
		return err
	}
	return c.create(ctx, manifest.KindNamespace, "", name, func(ctx context.Context) error {
		_, err := c.Clientset.CoreV1().Namespaces().Create(ctx, obj, metav1.CreateOptions{})
		return err
	})
}

// CreateDeployment creates the Deployment described by m.
func (c *Client) CreateDeployment(ctx context.Context, m *manifest.Manifest) error {
	if err := c.ready(); err != nil {
		return err
	}
	obj := &appsv1.Deployment{}
	ns, name, err := decode(m, manifest.KindDeployment, obj, true)
	if err != nil {
		return err
	}
	return c.create(ctx, manifest.KindDeployment, ns, name, func(ctx context.Context) error {
		_, err := c.Clientset.AppsV1().Deployments(ns).Create(ctx, obj, metav1.CreateOptions{})
		return err
	})
}

// CreateService creates the Service described by m.
func (c *Client) CreateService(ctx context.Context, m *manifest.Manifest) error {
	if err := c.ready(); err != nil {
		return err
	}
	obj := &corev1.Service{}
	ns, name, err := decode(m, manifest.KindService, obj, true)
	if err != nil {
		return err
	}
	return c.create(ctx, manifest.KindService, ns, name, func(ctx context.Context) error {
		_, err := c.Clientset.CoreV1().Services(ns).Create(ctx, obj, metav1.CreateOptions{})
		return err
	})
}

// CreateIngress creates the Ingress described by m.
func (c *Client) CreateIngress(ctx context.Context, m *manifest.Manifest) error {
	if err := c.ready(); err != nil {
		return err
	}
	obj := &networkingv1.Ingress{}
	ns, name, err := decode(m, manifest.KindIngress, obj, true)
	if err != nil {
		return err
	}
	return c.create(ctx, manifest.KindIngress, ns, name, func(ctx context.Context) error {
		_, err := c.Clientset.NetworkingV1().Ingresses(ns).Create(ctx, obj, metav1.CreateOptions{})
		return err
	})
}
