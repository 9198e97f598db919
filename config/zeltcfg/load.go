package zeltcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadInto decodes the YAML file at path over cfg. Keys present in the file
// override the values already in cfg; absent keys leave them unchanged.
func LoadInto(path string, cfg *Root) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return nil
}
