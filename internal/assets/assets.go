package assets

// CopyrightText is the name of the copyright page boilerplate.
const CopyrightText = "copyright"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadText loads a text template by name using the default embedded loader.
// The name should not include the .tmpl extension or path components.
// Returns ErrTextNotFound if the text does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadText(name string) (string, error) {
	return defaultLoader.LoadText(name)
}
