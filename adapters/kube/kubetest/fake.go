// Package kubetest builds kube clients backed by the client-go fake clientset.
package kubetest

import (
	"context"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/zalando-incubator/zelt/adapters/kube"
)

// FastWaits keeps polls short enough for unit tests.
var FastWaits = kube.Waits{
	Interval:        time.Millisecond,
	DeleteTimeout:   50 * time.Millisecond,
	PodReadyTimeout: 50 * time.Millisecond,
	PodListTimeout:  50 * time.Millisecond,
}

// NewClient returns a Client over a fake clientset seeded with objs.
// The fake clientset does not implement collection deletes for deployments,
// so a reactor doing so is installed.
func NewClient(objs ...runtime.Object) (*kube.Client, *fake.Clientset) {
	cs := fake.NewSimpleClientset(objs...)
	cs.PrependReactor("delete-collection", "deployments", func(action k8stesting.Action) (bool, runtime.Object, error) {
		ns := action.GetNamespace()
		gvr := appsv1.SchemeGroupVersion.WithResource("deployments")
		obj, err := cs.Tracker().List(gvr, appsv1.SchemeGroupVersion.WithKind("Deployment"), ns)
		if err != nil {
			return true, nil, err
		}
		for _, d := range obj.(*appsv1.DeploymentList).Items {
			if err := cs.Tracker().Delete(gvr, ns, d.Name); err != nil {
				return true, nil, err
			}
		}
		return true, nil, nil
	})
	return kube.NewClient(cs, &kube.Options{Waits: FastWaits}), cs
}

// ReadyPod returns a pod whose first container is ready.
func ReadyPod(namespace, name string, labels map[string]string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace, Labels: labels},
		Status: corev1.PodStatus{
			ContainerStatuses: []corev1.ContainerStatus{{Name: "locust", Ready: true}},
		},
	}
}

// CountActions returns how many recorded actions match verb and resource.
func CountActions(cs *fake.Clientset, verb, resource string) int {
	n := 0
	for _, a := range cs.Actions() {
		if a.GetVerb() == verb && a.GetResource().Resource == resource {
			n++
		}
	}
	return n
}

// Connector returns a ConnectFunc yielding c and counting its calls in calls, if non-nil.
func Connector(c *kube.Client, calls *int) kube.ConnectFunc {
	return func(context.Context) (*kube.Client, error) {
		if calls != nil {
			*calls++
		}
		return c, nil
	}
}
