package storage

import (
	"context"
	"fmt"
	"os"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/zalando-incubator/zelt/adapters/kube"
	"github.com/zalando-incubator/zelt/internal/logging"
)

const (
	// ConfigMapName is the fixed name of the ConfigMap holding the locustfile.
	ConfigMapName = "zelt-locustfile"
	// ConfigMapKey is the single data key of the ConfigMap.
	ConfigMapKey = "locustfile.py"
)

// ConfigMap stores the locustfile in a ConfigMap of the Locust namespace.
type ConfigMap struct {
	Namespace string
	Labels    map[string]string
	Connect   kube.ConnectFunc
}

func (s *ConfigMap) Upload(ctx context.Context, locustfile string) error {
	data, err := os.ReadFile(locustfile)
	if err != nil {
		return fmt.Errorf("read locustfile: %w", err)
	}
	kc, err := s.Connect(ctx)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info(ctx, "Storage:Upload", "method", MethodConfigMap.String(), "ns", s.Namespace, "locustfile", locustfile)
	return kc.CreateConfigMap(ctx, &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: ConfigMapName, Namespace: s.Namespace, Labels: s.Labels},
		Data:       map[string]string{ConfigMapKey: string(data)},
	})
}

func (s *ConfigMap) Delete(ctx context.Context) error {
	kc, err := s.Connect(ctx)
	if err != nil {
		return err
	}
	return kc.DeleteConfigMap(ctx, s.Namespace, ConfigMapName)
}
