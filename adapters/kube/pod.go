package kube

import (
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/zalando-incubator/zelt/internal/poll"
)

// WaitPodReady waits until the first container of the first pod matching
// selector in namespace reports ready.
func (c *Client) WaitPodReady(ctx context.Context, namespace, selector string) error {
	if err := c.ready(); err != nil {
		return err
	}
	logger := c.logger(ctx, "Pod", namespace, "").With("selector", selector)
	msgSym := "KubeClient:WaitPodReady"
	logger.Info(ctx, msgSym+"/s")

	_, err := poll.Until(ctx, c.Waits.podReadyPolicy(),
		func(ctx context.Context) (corev1.ContainerStatus, error) {
			return c.firstContainerStatus(ctx, namespace, selector)
		},
		func(s corev1.ContainerStatus) bool { return !s.Ready },
	)
	if err != nil {
		if errors.Is(err, poll.ErrExhausted) {
			err = fmt.Errorf("%w: %w", ErrPodNotReady, err)
		}
		logger.Error(ctx, msgSym+"/efail", "reason", Reason(err))
		return &ResourceError{Op: "wait for readiness of", Kind: "Pod", Namespace: namespace, Name: selector, Err: err}
	}
	logger.Info(ctx, msgSym+"/eok")
	return nil
}

// firstContainerStatus lists pods until one with container statuses shows up.
// Listing failures are retried within the pod list deadline.
func (c *Client) firstContainerStatus(ctx context.Context, namespace, selector string) (corev1.ContainerStatus, error) {
	logger := c.logger(ctx, "Pod", namespace, "").With("selector", selector)
	pod, err := poll.Until(ctx, c.Waits.podListPolicy(),
		func(ctx context.Context) (*corev1.Pod, error) {
			logger.Debug(ctx, "KubeClient:ListPods")
			l, err := c.Clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
			if err != nil {
				logger.Error(ctx, "KubeClient:ListPods/efail", "reason", Reason(err))
				return nil, poll.Retryable(err)
			}
			if len(l.Items) == 0 {
				return nil, nil
			}
			return &l.Items[0], nil
		},
		func(p *corev1.Pod) bool { return p == nil || len(p.Status.ContainerStatuses) == 0 },
	)
	if err != nil {
		return corev1.ContainerStatus{}, err
	}
	return pod.Status.ContainerStatuses[0], nil
}
