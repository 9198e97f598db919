package kube

import (
	"fmt"
	"time"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/zalando-incubator/zelt/internal/poll"
)

// Client wraps the typed Kubernetes clientset and the underlying REST config.
type Client struct {
	// RESTConfig is the configuration used to talk to the API server.
	// It is nil for clients built from an existing clientset.
	RESTConfig *rest.Config
	// Clientset provides typed clients for core/built-in resources.
	Clientset kubernetes.Interface
	// Waits bounds the synchronization polls after deletes and creates.
	Waits Waits
}

// Waits holds the polling parameters used by WaitAbsent and WaitPodReady.
type Waits struct {
	// Interval is the delay between probes.
	Interval time.Duration
	// DeleteTimeout bounds waiting for a deleted resource to disappear.
	DeleteTimeout time.Duration
	// PodReadyTimeout bounds waiting for the first container of a pod to be ready.
	PodReadyTimeout time.Duration
	// PodListTimeout bounds waiting for a matching pod to be listed with container statuses.
	PodListTimeout time.Duration
}

// DefaultWaits returns the standard polling parameters.
func DefaultWaits() Waits {
	return Waits{
		Interval:        poll.DefaultInterval,
		DeleteTimeout:   poll.DefaultTimeout,
		PodReadyTimeout: 360 * time.Second,
		PodListTimeout:  360 * time.Second,
	}
}

func (w Waits) deletePolicy() poll.Policy {
	return poll.Policy{Interval: w.Interval, Timeout: w.DeleteTimeout}
}

func (w Waits) podReadyPolicy() poll.Policy {
	return poll.Policy{Interval: w.Interval, Timeout: w.PodReadyTimeout}
}

func (w Waits) podListPolicy() poll.Policy {
	return poll.Policy{Interval: w.Interval, Timeout: w.PodListTimeout}
}

// Options controls client construction tuning. All fields are optional.
type Options struct {
	// UserAgent adds a custom user agent to the REST config.
	UserAgent string
	// QPS sets the allowed queries per second on the REST client.
	QPS float32
	// Burst sets the client-side rate limiter burst.
	Burst int
	// Waits overrides the polling parameters. Zero fields keep their defaults.
	Waits Waits
}

// applyDefaults applies reasonable defaults if not set.
func (o *Options) applyDefaults() {
	if o.QPS <= 0 {
		o.QPS = 20
	}
	if o.Burst <= 0 {
		o.Burst = 50
	}
	d := DefaultWaits()
	if o.Waits.Interval <= 0 {
		o.Waits.Interval = d.Interval
	}
	if o.Waits.DeleteTimeout <= 0 {
		o.Waits.DeleteTimeout = d.DeleteTimeout
	}
	if o.Waits.PodReadyTimeout <= 0 {
		o.Waits.PodReadyTimeout = d.PodReadyTimeout
	}
	if o.Waits.PodListTimeout <= 0 {
		o.Waits.PodListTimeout = d.PodListTimeout
	}
}

// NewClient wraps an existing clientset, e.g. a fake one in tests.
func NewClient(cs kubernetes.Interface, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	opts.applyDefaults()
	return &Client{Clientset: cs, Waits: opts.Waits}
}

// NewClientFromRESTConfig constructs a Client from an existing rest.Config.
func NewClientFromRESTConfig(cfg *rest.Config, opts *Options) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("REST config is nil")
	}
	if opts == nil {
		opts = &Options{}
	}
	opts.applyDefaults()

	cfg.QPS = opts.QPS
	cfg.Burst = opts.Burst
	if opts.UserAgent != "" {
		// AddUserAgent mutates cfg.UserAgent and returns the complete UA string.
		_ = rest.AddUserAgent(cfg, opts.UserAgent)
	}

	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build clientset: %w", err)
	}

	return &Client{RESTConfig: cfg, Clientset: cs, Waits: opts.Waits}, nil
}

func (c *Client) ready() error {
	if c == nil || c.Clientset == nil {
		return ErrNotInitialized
	}
	return nil
}
