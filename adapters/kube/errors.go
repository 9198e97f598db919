package kube

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

var (
	// ErrNotInitialized indicates a nil Client or a Client without clientset.
	ErrNotInitialized = errors.New("kube client is not initialized")

	// ErrStillPresent indicates that a deleted resource did not disappear in time.
	ErrStillPresent = errors.New("resource still present")

	// ErrPodNotReady indicates that a pod did not become ready in time.
	ErrPodNotReady = errors.New("pod not ready")
)

// ResourceError reports a failed operation on a specific resource.
type ResourceError struct {
	// Op is the operation, e.g. "create", "delete", "wait".
	Op        string
	Kind      string
	Namespace string
	Name      string
	Err       error
}

func (e *ResourceError) Error() string {
	switch {
	case e.Name == "":
		return fmt.Sprintf("%s %s in namespace %s: %v", e.Op, e.Kind, e.Namespace, e.Err)
	case e.Namespace != "":
		return fmt.Sprintf("%s %s %s/%s: %v", e.Op, e.Kind, e.Namespace, e.Name, e.Err)
	default:
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Kind, e.Name, e.Err)
	}
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Reason returns the API status reason of err, or its message for non-API errors.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var status apierrors.APIStatus
	if errors.As(err, &status) {
		if msg := status.Status().Message; msg != "" {
			return msg
		}
		if r := status.Status().Reason; r != "" {
			return string(r)
		}
	}
	return err.Error()
}
