// Package assets provides the templates and stylesheet used to build EPUB
// containers.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in set)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the converter. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when an asset is
// not found, so a custom directory only needs the files it overrides.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # page stylesheet (e.g., page.css)
//	└── templates/
//	    └── {name}/
//	        ├── container.xml    # META-INF/container.xml
//	        ├── package.opf      # OEBPS/content.opf
//	        ├── toc.ncx          # OEBPS/toc.ncx
//	        └── page.xhtml       # one wrapper per image
//
// Templates are text/template sources; see the render package for the data
// passed to each one.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
