package locust_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/gomega"
)

const (
	namespaceYAML = `apiVersion: v1
kind: Namespace
metadata:
  name: load
  labels:
    application: locust
`
	serviceYAML = `apiVersion: v1
kind: Service
metadata:
  name: locust
  namespace: load
spec:
  selector:
    role: controller
  ports:
  - port: 8089
`
	ingressYAML = `apiVersion: networking.k8s.io/v1
kind: Ingress
metadata:
  name: locust
  namespace: load
spec:
  rules:
  - host: locust.example.org
`
	controllerYAML = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: locust-controller
  namespace: load
  labels:
    application: locust
    role: controller
spec:
  replicas: 1
  selector:
    matchLabels:
      role: controller
`
	workerYAML = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: locust-worker
  namespace: load
  labels:
    application: locust
    role: worker
spec:
  replicas: 1
  selector:
    matchLabels:
      role: worker
`
)

var controllerLabels = map[string]string{"application": "locust", "role": "controller"}

// writeManifests creates a manifests directory with the given files.
func writeManifests(dir string, withWorker bool) string {
	files := map[string]string{
		"namespace.yaml":  namespaceYAML,
		"service.yaml":    serviceYAML,
		"ingress.yaml":    ingressYAML,
		"controller.yaml": controllerYAML,
	}
	if withWorker {
		files["worker.yaml"] = workerYAML
	}
	manifests := filepath.Join(dir, "manifests")
	Expect(os.MkdirAll(manifests, 0o755)).To(Succeed())
	for name, content := range files {
		Expect(os.WriteFile(filepath.Join(manifests, name), []byte(content), 0o644)).To(Succeed())
	}
	return manifests
}

func writeLocustfile(dir string) string {
	path := filepath.Join(dir, "locustfile.py")
	Expect(os.WriteFile(path, []byte("from locust import HttpUser\n"), 0o644)).To(Succeed())
	return path
}
