// Package zeltcfg defines the configuration schema (structs) for the zelt --config file.
// Keys mirror the long command-line option names.
package zeltcfg

// Root is the root structure of the config file.
type Root struct {
	Locustfile   string `yaml:"locustfile,omitempty"`
	Manifests    string `yaml:"manifests,omitempty"`     // directory of Kubernetes manifests
	WorkerPods   int    `yaml:"worker-pods,omitempty"`   // worker replicas for from-locustfile
	RequiredPods int    `yaml:"required-pods,omitempty"` // worker replicas for rescale
	Storage      string `yaml:"storage,omitempty"`       // s3 | configmap | cm
	S3Bucket     string `yaml:"s3-bucket,omitempty"`
	S3Key        string `yaml:"s3-key,omitempty"`
	Clean        bool   `yaml:"clean,omitempty"`
	Local        bool   `yaml:"local,omitempty"`
	Logging      string `yaml:"logging,omitempty"` // DEBUG, INFO, WARN, ERROR

	Timeouts Timeouts `yaml:"timeouts,omitempty"`
}

// Default returns the values used when neither flags nor file set an option.
func Default() *Root {
	return &Root{
		WorkerPods: 1,
		Storage:    "configmap",
		Logging:    "INFO",
		Timeouts:   *TimeoutsFromEnv(),
	}
}
