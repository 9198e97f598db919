// Package manifest classifies user-supplied Kubernetes manifests into the
// resource set needed to run a distributed Locust deployment.
package manifest

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
)

// Kind is the resource kind of a manifest.
type Kind int

const (
	KindOther Kind = iota
	KindIngress
	KindService
	KindNamespace
	KindDeployment
)

func (k Kind) String() string {
	switch k {
	case KindIngress:
		return "Ingress"
	case KindService:
		return "Service"
	case KindNamespace:
		return "Namespace"
	case KindDeployment:
		return "Deployment"
	default:
		return "Other"
	}
}

// ParseKind maps a manifest kind to a Kind, ignoring case. Unknown kinds map to KindOther.
func ParseKind(s string) Kind {
	for _, k := range []Kind{KindIngress, KindService, KindNamespace, KindDeployment} {
		if strings.EqualFold(s, k.String()) {
			return k
		}
	}
	return KindOther
}

// Role is the Locust role of a Deployment, taken from its "role" label.
type Role int

const (
	RoleOther Role = iota
	RoleController
	RoleWorker
)

// RoleLabel is the label key carrying the Locust role.
const RoleLabel = "role"

func (r Role) String() string {
	switch r {
	case RoleController:
		return "controller"
	case RoleWorker:
		return "worker"
	default:
		return "other"
	}
}

// ParseRole maps a role label value to a Role, ignoring case and surrounding spaces.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case RoleController.String():
		return RoleController
	case RoleWorker.String():
		return RoleWorker
	default:
		return RoleOther
	}
}

// Manifest wraps one resource document. Accessors validate lazily.
type Manifest struct {
	body       map[string]any
	labelOrder []string
	source     string
}

// New wraps an in-memory document. Label order falls back to sorted keys.
func New(body map[string]any) *Manifest {
	b, _ := normalize(body).(map[string]any)
	if b == nil {
		b = map[string]any{}
	}
	return &Manifest{body: b}
}

// Source returns the file the manifest was loaded from, if any.
func (m *Manifest) Source() string { return m.source }

// Body returns a deep copy of the document, suitable for conversion into API objects.
func (m *Manifest) Body() map[string]any {
	return runtime.DeepCopyJSON(m.body)
}

// RawKind returns the kind field as written, or an empty string.
func (m *Manifest) RawKind() string {
	s, _ := m.body["kind"].(string)
	return s
}

// Kind returns the resource kind. Unknown kinds yield KindOther without error.
func (m *Manifest) Kind() (Kind, error) {
	v, ok := m.body["kind"]
	if !ok {
		return KindOther, &FieldError{Field: "kind"}
	}
	s, ok := v.(string)
	if !ok {
		return KindOther, &FieldError{Field: "kind", Expected: "string", Got: v}
	}
	return ParseKind(s), nil
}

func (m *Manifest) metadata(key string) (any, error) {
	meta, ok := m.body["metadata"].(map[string]any)
	if !ok {
		return nil, &FieldError{Field: "metadata." + key}
	}
	v, ok := meta[key]
	if !ok {
		return nil, &FieldError{Field: "metadata." + key}
	}
	return v, nil
}

func (m *Manifest) nonEmptyStringMetadata(key string) (string, error) {
	v, err := m.metadata(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: "metadata." + key, Expected: "string", Got: v}
	}
	if s == "" {
		return "", &FieldError{Field: "metadata." + key, Empty: true}
	}
	return s, nil
}

// Name returns metadata.name.
func (m *Manifest) Name() (string, error) {
	return m.nonEmptyStringMetadata("name")
}

// Namespace returns metadata.namespace, or the resource name for Namespace manifests.
func (m *Manifest) Namespace() (string, error) {
	if k, err := m.Kind(); err == nil && k == KindNamespace {
		return m.Name()
	}
	return m.nonEmptyStringMetadata("namespace")
}

// Labels returns metadata.labels as a "k=v,k=v" label selector in document order.
func (m *Manifest) Labels() (string, error) {
	v, err := m.metadata("labels")
	if err != nil {
		return "", err
	}
	labels, ok := v.(map[string]any)
	if !ok {
		return "", &FieldError{Field: "metadata.labels", Expected: "mapping", Got: v}
	}
	pairs := make([]string, 0, len(labels))
	for _, k := range m.labelKeys(labels) {
		pairs = append(pairs, k+"="+fmt.Sprint(labels[k]))
	}
	return strings.Join(pairs, ","), nil
}

// LabelMap returns metadata.labels, or an empty map when absent or malformed.
func (m *Manifest) LabelMap() map[string]string {
	out := map[string]string{}
	v, err := m.metadata("labels")
	if err != nil {
		return out
	}
	labels, _ := v.(map[string]any)
	for k, val := range labels {
		out[k] = fmt.Sprint(val)
	}
	return out
}

func (m *Manifest) labelKeys(labels map[string]any) []string {
	if len(m.labelOrder) == len(labels) {
		keys := make([]string, 0, len(labels))
		for _, k := range m.labelOrder {
			if _, ok := labels[k]; !ok {
				break
			}
			keys = append(keys, k)
		}
		if len(keys) == len(labels) {
			return keys
		}
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Role returns the role label value. Missing or unknown roles yield RoleOther.
func (m *Manifest) Role() Role {
	return ParseRole(m.LabelMap()[RoleLabel])
}

// Host returns spec.rules[0].host of an Ingress manifest.
func (m *Manifest) Host() (string, error) {
	const field = "spec.rules[0].host"
	spec, _ := m.body["spec"].(map[string]any)
	rules, _ := spec["rules"].([]any)
	if len(rules) == 0 {
		return "", &FieldError{Field: field}
	}
	rule, _ := rules[0].(map[string]any)
	v, ok := rule["host"]
	if !ok {
		return "", &FieldError{Field: field}
	}
	host, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: field, Expected: "string", Got: v}
	}
	return host, nil
}

// Replicas returns spec.replicas and whether it is set.
func (m *Manifest) Replicas() (int64, bool) {
	spec, _ := m.body["spec"].(map[string]any)
	switch v := spec["replicas"].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// SetWorkerReplicas sets spec.replicas. It is the only mutation a Manifest allows
// and is restricted to worker Deployments.
func (m *Manifest) SetWorkerReplicas(n int32) error {
	if k, err := m.Kind(); err != nil || k != KindDeployment || m.Role() != RoleWorker {
		return fmt.Errorf("%w: replicas can only be set on a %s deployment", ErrInvalidManifest, RoleWorker)
	}
	if n < 0 {
		return fmt.Errorf("%w: expected a non-negative number of replicas, got %d", ErrInvalidManifest, n)
	}
	spec, ok := m.body["spec"].(map[string]any)
	if !ok {
		spec = map[string]any{}
		m.body["spec"] = spec
	}
	spec["replicas"] = int64(n)
	return nil
}

// normalize converts decoded YAML values into JSON-compatible types.
// Integers beyond the int64 range are kept as decimal strings.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = val
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = val
		}
		return out
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return normalize(uint64(x))
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return strconv.FormatUint(x, 10)
		}
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}
