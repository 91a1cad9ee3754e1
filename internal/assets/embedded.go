package assets

import (
	"embed"
	"fmt"
)

//go:embed texts/*.tmpl
var texts embed.FS

// EmbeddedLoader loads assets from the embedded filesystem.
// Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadText loads a text template from embedded assets by name.
func (e *EmbeddedLoader) LoadText(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := texts.ReadFile("texts/" + name + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTextNotFound, name)
	}

	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
