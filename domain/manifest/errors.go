package manifest

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidManifest    = errors.New("invalid manifest")
	ErrManifestsNotFound  = errors.New("no manifests found")
	ErrInvalidManifestSet = errors.New("invalid manifest set")
)

// FieldError describes a missing or malformed field of a manifest document.
type FieldError struct {
	// Field is the dotted path of the field, e.g. "metadata.name".
	Field string
	// Expected names the expected type, empty when the field is missing.
	Expected string
	// Got is the offending value.
	Got any
	// Empty reports a string field that is present but empty.
	Empty bool
}

func (e *FieldError) Error() string {
	switch {
	case e.Empty:
		return fmt.Sprintf("unexpectedly empty string for %q in manifest", e.Field)
	case e.Expected == "":
		return fmt.Sprintf("no %q in manifest", e.Field)
	default:
		return fmt.Sprintf("expected a %s but got %#v as %q in manifest", e.Expected, e.Got, e.Field)
	}
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidManifest
}
