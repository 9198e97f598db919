package kube

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"

	"github.com/zalando-incubator/zelt/internal/logging"
)

// Credentials selects the cluster to talk to.
type Credentials struct {
	// Kubeconfig is the kubeconfig file path. Empty means $KUBECONFIG or ~/.kube/config.
	Kubeconfig string
	// Context overrides the kubeconfig current-context.
	Context string
}

// ResolveKubeconfigPath returns the kubeconfig path to use, expanding a leading ~.
func ResolveKubeconfigPath(path string) string {
	if path == "" {
		if env := os.Getenv("KUBECONFIG"); env != "" {
			// Only the first entry of a path list is used.
			return strings.Split(env, string(os.PathListSeparator))[0]
		}
		home, _ := os.UserHomeDir()
		if home == "" {
			return ""
		}
		return filepath.Join(home, ".kube", "config")
	}
	if path[0] == '~' {
		if home, _ := os.UserHomeDir(); home != "" {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// LoadRESTConfig builds a REST config from the kubeconfig file, falling back
// to the in-cluster config when no kubeconfig file exists.
func LoadRESTConfig(creds Credentials) (*rest.Config, error) {
	kubeconfig := ResolveKubeconfigPath(creds.Kubeconfig)
	if fi, err := os.Stat(kubeconfig); err == nil && !fi.IsDir() {
		loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig}
		overrides := &clientcmd.ConfigOverrides{ClusterInfo: api.Cluster{}}
		if creds.Context != "" {
			overrides.CurrentContext = creds.Context
		}
		cc := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides)
		cfg, err := cc.ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("build rest config from kubeconfig: %w", err)
		}
		return cfg, nil
	}
	cfg, err := rest.InClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("could not find kubeconfig at %q and in-cluster config failed: %w", kubeconfig, err)
	}
	return cfg, nil
}

// Connect reads the cluster credentials and builds a Client.
func Connect(ctx context.Context, creds Credentials, opts *Options) (*Client, error) {
	cfg, err := LoadRESTConfig(creds)
	if err != nil {
		logging.FromContext(ctx).Error(ctx, "KubeClient:Connect/efail", "kubeconfig", creds.Kubeconfig, "err", err)
		return nil, err
	}
	return NewClientFromRESTConfig(cfg, opts)
}

// ConnectFunc reads cluster credentials and returns a ready Client.
type ConnectFunc func(ctx context.Context) (*Client, error)

// Connector returns a ConnectFunc bound to creds and opts.
func Connector(creds Credentials, opts *Options) ConnectFunc {
	return func(ctx context.Context) (*Client, error) {
		var o *Options
		if opts != nil {
			cp := *opts
			o = &cp
		}
		return Connect(ctx, creds, o)
	}
}
