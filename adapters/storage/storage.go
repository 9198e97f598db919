// Package storage publishes the locustfile where the Locust pods can read it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando-incubator/zelt/adapters/kube"
	"github.com/zalando-incubator/zelt/domain/manifest"
)

var (
	ErrUnknownMethod  = errors.New("unknown storage method")
	ErrInvalidOptions = errors.New("invalid storage options")
)

// Storage uploads and removes the locustfile.
type Storage interface {
	Upload(ctx context.Context, locustfile string) error
	Delete(ctx context.Context) error
}

// Method selects a Storage backend.
type Method int

const (
	MethodConfigMap Method = iota
	MethodS3
)

func (m Method) String() string {
	if m == MethodS3 {
		return "s3"
	}
	return "configmap"
}

// ParseMethod resolves a storage method name, ignoring case.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "s3":
		return MethodS3, nil
	case "cm", "configmap":
		return MethodConfigMap, nil
	}
	return MethodConfigMap, fmt.Errorf("%w %q", ErrUnknownMethod, s)
}

// BuildInput carries what the backends need.
type BuildInput struct {
	// Set provides the namespace and labels of the ConfigMap backend.
	Set *manifest.Set
	// Bucket and Key locate the S3 object. Both are required for S3 and forbidden otherwise.
	Bucket string
	Key    string
	// Connect provides the cluster client of the ConfigMap backend.
	Connect kube.ConnectFunc
	// S3 overrides the object API. When nil the default AWS client is loaded on first use.
	S3 ObjectAPI
}

// Build validates the options of method m and returns its backend.
func (m Method) Build(in BuildInput) (Storage, error) {
	if m == MethodS3 {
		if in.Bucket == "" || in.Key == "" {
			return nil, fmt.Errorf("%w: missing required 's3-bucket' and/or 's3-key' options for 'storage=s3' option", ErrInvalidOptions)
		}
		return &S3{Bucket: in.Bucket, Key: in.Key, API: in.S3}, nil
	}
	if in.Bucket != "" || in.Key != "" {
		return nil, fmt.Errorf("%w: unexpected 's3-bucket' or 's3-key' options without 'storage=s3' option", ErrInvalidOptions)
	}
	if in.Set == nil || in.Set.Namespace == nil {
		return nil, fmt.Errorf("%w: a namespace manifest is required for configmap storage", ErrInvalidOptions)
	}
	if in.Connect == nil {
		return nil, fmt.Errorf("%w: a cluster connection is required for configmap storage", ErrInvalidOptions)
	}
	ns, err := in.Set.Namespace.Name()
	if err != nil {
		return nil, err
	}
	return &ConfigMap{Namespace: ns, Labels: in.Set.Namespace.LabelMap(), Connect: in.Connect}, nil
}
