package kube

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveKubeconfigPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	t.Setenv("KUBECONFIG", "")
	if got, want := ResolveKubeconfigPath(""), filepath.Join(home, ".kube", "config"); got != want {
		t.Errorf("default path = %q, want %q", got, want)
	}
	if got, want := ResolveKubeconfigPath("~/custom/config"), filepath.Join(home, "custom", "config"); got != want {
		t.Errorf("tilde path = %q, want %q", got, want)
	}
	if got := ResolveKubeconfigPath("/etc/kubeconfig"); got != "/etc/kubeconfig" {
		t.Errorf("absolute path = %q", got)
	}

	t.Setenv("KUBECONFIG", "/tmp/a"+string(os.PathListSeparator)+"/tmp/b")
	if got := ResolveKubeconfigPath(""); got != "/tmp/a" {
		t.Errorf("KUBECONFIG path = %q, want /tmp/a", got)
	}
}

func TestLoadRESTConfig_Context(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	kubeconfig := `apiVersion: v1
kind: Config
clusters:
- name: one
  cluster:
    server: https://one.example.org
- name: two
  cluster:
    server: https://two.example.org
contexts:
- name: one
  context:
    cluster: one
    user: user
- name: two
  context:
    cluster: two
    user: user
current-context: one
users:
- name: user
  user:
    token: secret
`
	if err := os.WriteFile(path, []byte(kubeconfig), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRESTConfig(Credentials{Kubeconfig: path})
	if err != nil {
		t.Fatalf("LoadRESTConfig: %v", err)
	}
	if cfg.Host != "https://one.example.org" {
		t.Errorf("host = %q, want current context", cfg.Host)
	}

	cfg, err = LoadRESTConfig(Credentials{Kubeconfig: path, Context: "two"})
	if err != nil {
		t.Fatalf("LoadRESTConfig: %v", err)
	}
	if cfg.Host != "https://two.example.org" {
		t.Errorf("host = %q, want overridden context", cfg.Host)
	}

	c, err := NewClientFromRESTConfig(cfg, &Options{UserAgent: "zelt-test"})
	if err != nil {
		t.Fatalf("NewClientFromRESTConfig: %v", err)
	}
	if c.Waits != DefaultWaits() {
		t.Errorf("Waits = %+v, want defaults", c.Waits)
	}
}
