package kube

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const kindConfigMap = "ConfigMap"

// CreateConfigMap creates cm in its namespace.
func (c *Client) CreateConfigMap(ctx context.Context, cm *corev1.ConfigMap) error {
	if err := c.ready(); err != nil {
		return err
	}
	logger := c.logger(ctx, kindConfigMap, cm.Namespace, cm.Name)
	msgSym := "KubeClient:Create"
	logger.Info(ctx, msgSym+"/s")
	if _, err := c.Clientset.CoreV1().ConfigMaps(cm.Namespace).Create(ctx, cm, metav1.CreateOptions{}); err != nil {
		logger.Error(ctx, msgSym+"/efail", "reason", Reason(err))
		return &ResourceError{Op: "create", Kind: kindConfigMap, Namespace: cm.Namespace, Name: cm.Name, Err: err}
	}
	logger.Info(ctx, msgSym+"/eok")
	return nil
}

// DeleteConfigMap deletes a ConfigMap and waits until it is gone.
func (c *Client) DeleteConfigMap(ctx context.Context, namespace, name string) error {
	if err := c.ready(); err != nil {
		return err
	}
	api := c.Clientset.CoreV1().ConfigMaps(namespace)
	return c.deleteAndWait(ctx, target{Kind: kindConfigMap, Namespace: namespace, Name: name},
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
