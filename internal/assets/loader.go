package assets

// AssetLoader defines the contract for loading text templates.
// Implementations may load from embedded assets, filesystem, etc.
type AssetLoader interface {
	// LoadText loads a text template by name (without .tmpl extension).
	// Returns ErrTextNotFound if the text doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadText(name string) (string, error)
}
