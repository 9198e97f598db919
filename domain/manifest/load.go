package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/zalando-incubator/zelt/internal/logging"
)

// Load reads a single-document YAML manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: can't read manifest from file %s: %v", ErrInvalidManifest, path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	m.source = path
	return m, nil
}

// Parse decodes a single-document YAML manifest whose top level is a mapping.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidManifest)
		}
		return nil, fmt.Errorf("%w: can't read manifest from non-YAML content: %v", ErrInvalidManifest, err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: expected a single document", ErrInvalidManifest)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping as top-level manifest object", ErrInvalidManifest)
	}
	var body map[string]any
	if err := root.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	m := New(body)
	m.labelOrder = labelOrder(root)
	return m, nil
}

// labelOrder returns the keys of metadata.labels in document order.
func labelOrder(root *yaml.Node) []string {
	labels := mappingValue(mappingValue(root, "metadata"), "labels")
	if labels == nil || labels.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(labels.Content)/2)
	for i := 0; i+1 < len(labels.Content); i += 2 {
		keys = append(keys, labels.Content[i].Value)
	}
	return keys
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// LoadDir loads every regular file in dir as a manifest. Files that cannot be
// loaded are skipped with a warning; it fails only when nothing was loaded.
func LoadDir(ctx context.Context, dir string) ([]*Manifest, error) {
	logger := logging.FromContext(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load any manifest files from %s: %v", ErrManifestsNotFound, dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var manifests []*Manifest
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
			continue
		}
		m, err := Load(path)
		if err != nil {
			logger.Warn(ctx, "ignoring manifest file", "path", path, "err", err)
			continue
		}
		manifests = append(manifests, m)
	}
	if len(manifests) == 0 {
		return nil, fmt.Errorf("%w: could not load any manifest files from %s", ErrManifestsNotFound, dir)
	}
	return manifests, nil
}
