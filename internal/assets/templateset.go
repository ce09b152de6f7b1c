package assets

import "fmt"

// Built-in asset names.
const (
	DefaultTemplateSetName = "epub3"
	DefaultStyleName       = "page"
)

// Template file names inside a template set directory.
const (
	ContainerFile = "container.xml"
	PackageFile   = "package.opf"
	NCXFile       = "toc.ncx"
	PageFile      = "page.xhtml"
)

// templateFiles lists every file a complete template set provides.
var templateFiles = []string{ContainerFile, PackageFile, NCXFile, PageFile}

// TemplateSet holds the template sources for one EPUB layout.
type TemplateSet struct {
	Name      string
	Container string
	Package   string
	NCX       string
	Page      string
}

// buildTemplateSet assembles a set from a file loader.
// read must return found=false for missing files.
func buildTemplateSet(name string, read func(file string) (content string, found bool, err error)) (*TemplateSet, error) {
	contents := make(map[string]string, len(templateFiles))
	var missing []string
	for _, file := range templateFiles {
		content, found, err := read(file)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, file, err)
		}
		if !found {
			missing = append(missing, file)
			continue
		}
		contents[file] = content
	}

	if len(missing) == len(templateFiles) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %q missing %v", ErrIncompleteTemplateSet, name, missing)
	}

	return &TemplateSet{
		Name:      name,
		Container: contents[ContainerFile],
		Package:   contents[PackageFile],
		NCX:       contents[NCXFile],
		Page:      contents[PageFile],
	}, nil
}
