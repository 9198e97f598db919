package kube

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/zalando-incubator/zelt/domain/manifest"
)

// ReadDeployment fetches the live Deployment.
func (c *Client) ReadDeployment(ctx context.Context, namespace, name string) (*appsv1.Deployment, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	d, err := c.Clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		c.logger(ctx, manifest.KindDeployment.String(), namespace, name).Error(ctx, "KubeClient:ReadDeployment/efail", "reason", Reason(err))
		return nil, &ResourceError{Op: "read", Kind: manifest.KindDeployment.String(), Namespace: namespace, Name: name, Err: err}
	}
	return d, nil
}

// ReplaceDeployment replaces the live Deployment with d.
func (c *Client) ReplaceDeployment(ctx context.Context, d *appsv1.Deployment) (*appsv1.Deployment, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	out, err := c.Clientset.AppsV1().Deployments(d.Namespace).Update(ctx, d, metav1.UpdateOptions{})
	if err != nil {
		c.logger(ctx, manifest.KindDeployment.String(), d.Namespace, d.Name).Error(ctx, "KubeClient:ReplaceDeployment/efail", "reason", Reason(err))
		return nil, &ResourceError{Op: "replace", Kind: manifest.KindDeployment.String(), Namespace: d.Namespace, Name: d.Name, Err: err}
	}
	return out, nil
}

// RescaleDeployment reads the live Deployment, sets its replica count and replaces it.
func (c *Client) RescaleDeployment(ctx context.Context, namespace, name string, replicas int32) (*appsv1.Deployment, error) {
	logger := c.logger(ctx, manifest.KindDeployment.String(), namespace, name)
	msgSym := "KubeClient:RescaleDeployment"
	logger.Info(ctx, msgSym+"/s", "replicas", replicas)

	if replicas < 0 {
		return nil, fmt.Errorf("expected a non-negative number of replicas, got %d", replicas)
	}
	d, err := c.ReadDeployment(ctx, namespace, name)
	if err != nil {
		return nil, err
	}
	var prev int32 = 1
	if d.Spec.Replicas != nil {
		prev = *d.Spec.Replicas
	}
	logger.Debug(ctx, msgSym+"/replicas", "from", prev, "to", replicas)
	d.Spec.Replicas = &replicas

	out, err := c.ReplaceDeployment(ctx, d)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, msgSym+"/eok")
	return out, nil
}
