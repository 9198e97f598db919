package zeltcfg

import (
	"errors"
	"fmt"
	"strings"
)

var storageMethods = map[string]bool{"s3": true, "cm": true, "configmap": true}

// Validate performs basic sanity checks on the configuration.
func (r *Root) Validate() error {
	if r == nil {
		return errors.New("nil config")
	}
	if r.WorkerPods < 0 {
		return fmt.Errorf("worker-pods must be non-negative, got %d", r.WorkerPods)
	}
	if r.RequiredPods < 0 {
		return fmt.Errorf("required-pods must be non-negative, got %d", r.RequiredPods)
	}
	if r.Storage != "" && !storageMethods[strings.ToLower(r.Storage)] {
		return fmt.Errorf("unknown storage method %q", r.Storage)
	}
	isS3 := strings.EqualFold(r.Storage, "s3")
	if isS3 && (r.S3Bucket == "" || r.S3Key == "") {
		return errors.New("storage s3 requires both s3-bucket and s3-key")
	}
	if !isS3 && (r.S3Bucket != "" || r.S3Key != "") {
		return errors.New("s3-bucket and s3-key require storage s3")
	}
	t := r.Timeouts
	if t.PollInterval < 0 || t.DeleteTimeout < 0 || t.PodReadyTimeout < 0 || t.PodListTimeout < 0 {
		return errors.New("timeouts must be non-negative")
	}
	return nil
}
