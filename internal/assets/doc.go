// Package assets provides the text templates used to assemble book front
// matter.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in texts)
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the converter. It tries the custom
// directory first and falls back to the embedded copy when the text is
// absent, so a single boilerplate can be overridden while the rest keep
// their defaults.
//
// # Directory Structure
//
//	{basePath}/
//	└── texts/
//	    └── {name}.tmpl          # text/template source (e.g., copyright.tmpl)
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader reads through os.Root, so symlinks cannot escape basePath.
package assets
