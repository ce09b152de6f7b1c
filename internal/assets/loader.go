package assets

import (
	"fmt"
	"strings"
)

// AssetLoader defines the contract for loading EPUB stylesheets and templates.
type AssetLoader interface {
	// LoadStyle loads a CSS stylesheet by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the named EPUB template directory.
	// Returns ErrTemplateSetNotFound if no template of the set exists and
	// ErrIncompleteTemplateSet if only some of them do.
	LoadTemplateSet(name string) (*TemplateSet, error)
}

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Names must be non-empty and free of path separators and dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
