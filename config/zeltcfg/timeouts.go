package zeltcfg

import (
	"os"
	"time"
)

// Default polling parameters
const (
	// DefaultPollInterval is the delay between probes of every wait
	DefaultPollInterval = 1 * time.Second

	// DefaultDeleteTimeout bounds waiting for deleted resources to disappear
	DefaultDeleteTimeout = 240 * time.Second

	// DefaultPodReadyTimeout bounds waiting for the controller pod to become ready
	DefaultPodReadyTimeout = 360 * time.Second

	// DefaultPodListTimeout bounds waiting for the controller pod to be listed
	DefaultPodListTimeout = 360 * time.Second
)

// Environment variable names for timeout overrides
const (
	EnvPollInterval    = "ZELT_POLL_INTERVAL"
	EnvDeleteTimeout   = "ZELT_DELETE_TIMEOUT"
	EnvPodReadyTimeout = "ZELT_POD_READY_TIMEOUT"
	EnvPodListTimeout  = "ZELT_POD_LIST_TIMEOUT"
)

// Timeouts holds the polling parameters of cluster synchronization points.
type Timeouts struct {
	PollInterval    time.Duration `yaml:"pollInterval,omitempty"`
	DeleteTimeout   time.Duration `yaml:"deleteTimeout,omitempty"`
	PodReadyTimeout time.Duration `yaml:"podReadyTimeout,omitempty"`
	PodListTimeout  time.Duration `yaml:"podListTimeout,omitempty"`
}

// DefaultTimeouts returns Timeouts with all default values
func DefaultTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:    DefaultPollInterval,
		DeleteTimeout:   DefaultDeleteTimeout,
		PodReadyTimeout: DefaultPodReadyTimeout,
		PodListTimeout:  DefaultPodListTimeout,
	}
}

// TimeoutsFromEnv returns Timeouts with values from environment variables, falling back to defaults.
// Unparsable or non-positive values are ignored.
func TimeoutsFromEnv() *Timeouts {
	t := DefaultTimeouts()
	if d, ok := durationFromEnv(EnvPollInterval); ok {
		t = t.WithPollInterval(d)
	}
	if d, ok := durationFromEnv(EnvDeleteTimeout); ok {
		t = t.WithDeleteTimeout(d)
	}
	if d, ok := durationFromEnv(EnvPodReadyTimeout); ok {
		t = t.WithPodReadyTimeout(d)
	}
	if d, ok := durationFromEnv(EnvPodListTimeout); ok {
		t = t.WithPodListTimeout(d)
	}
	return t
}

func durationFromEnv(name string) (time.Duration, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// WithPollInterval returns a copy with updated poll interval
func (t *Timeouts) WithPollInterval(d time.Duration) *Timeouts {
	cp := *t
	cp.PollInterval = d
	return &cp
}

// WithDeleteTimeout returns a copy with updated delete timeout
func (t *Timeouts) WithDeleteTimeout(d time.Duration) *Timeouts {
	cp := *t
	cp.DeleteTimeout = d
	return &cp
}

// WithPodReadyTimeout returns a copy with updated pod ready timeout
func (t *Timeouts) WithPodReadyTimeout(d time.Duration) *Timeouts {
	cp := *t
	cp.PodReadyTimeout = d
	return &cp
}

// WithPodListTimeout returns a copy with updated pod list timeout
func (t *Timeouts) WithPodListTimeout(d time.Duration) *Timeouts {
	cp := *t
	cp.PodListTimeout = d
	return &cp
}
