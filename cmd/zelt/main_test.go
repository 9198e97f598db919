package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/zalando-incubator/zelt/config/zeltcfg"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-format", "text", "--logging", "ERROR"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "zelt version ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCommandsRejectInvalidInput(t *testing.T) {
	dir := t.TempDir()
	locustfile := filepath.Join(dir, "locustfile.py")
	if err := os.WriteFile(locustfile, []byte("print('hi')\n"), 0644); err != nil {
		t.Fatalf("write locustfile: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "deploy without locustfile", args: []string{"from-locustfile"}, wantErr: "locustfile"},
		{name: "deploy without manifests", args: []string{"from-locustfile", locustfile}, wantErr: "manifests"},
		{name: "deploy s3 without bucket", args: []string{"from-locustfile", locustfile, "-m", dir, "-s", "s3"}, wantErr: "s3-bucket"},
		{name: "deploy unknown storage", args: []string{"from-locustfile", locustfile, "-m", dir, "-s", "ftp"}, wantErr: "unknown storage"},
		{name: "rescale without pods", args: []string{"rescale", "-m", dir}, wantErr: "required-pods"},
		{name: "rescale not a number", args: []string{"rescale", "many", "-m", dir}, wantErr: "invalid"},
		{name: "rescale without manifests", args: []string{"rescale", "3"}, wantErr: "manifests"},
		{name: "delete without manifests", args: []string{"delete"}, wantErr: "manifests"},
		{name: "delete with stray bucket", args: []string{"delete", "-m", dir, "--s3-bucket", "b"}, wantErr: "require storage s3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveConfigFileOverridesFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zelt.yml")
	content := "locustfile: from-file.py\nworker-pods: 7\nmanifests: deploy/\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := zeltcfg.Default()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	addManifestsFlag(cmd.Flags(), cfg)
	if err := cmd.Flags().Parse([]string{"--config", path, "-m", "flag/"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := resolveConfig(cmd, cfg); err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Manifests != "deploy/" {
		t.Errorf("Manifests = %q, want %q", cfg.Manifests, "deploy/")
	}
	if cfg.WorkerPods != 7 {
		t.Errorf("WorkerPods = %d, want 7", cfg.WorkerPods)
	}
	if cfg.Locustfile != "from-file.py" {
		t.Errorf("Locustfile = %q, want %q", cfg.Locustfile, "from-file.py")
	}
	if cfg.Storage != "configmap" {
		t.Errorf("Storage = %q, want default %q", cfg.Storage, "configmap")
	}
}

func TestResolveConfigMissingFile(t *testing.T) {
	cfg := zeltcfg.Default()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	if err := cmd.Flags().Parse([]string{"--config", filepath.Join(t.TempDir(), "absent.yml")}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := resolveConfig(cmd, cfg); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
