package repository

import "slices"

// DocumentType describes what a node of a given type carries.
type DocumentType struct {
	Name    string
	Facets  []string
	Schemas []string

	// HoldsPayload is true for types whose nodes carry binary content
	HoldsPayload bool
}

// Document type names known to the default registry.
const (
	TypeRoot          = "Root"
	TypeDomain        = "Domain"
	TypeWorkspaceRoot = "WorkspaceRoot"
	TypeWorkspace     = "Workspace"
	TypeFolder        = "Folder"
	TypeHiddenFolder  = "HiddenFolder"
	TypeFile          = "File"
	TypeNote          = "Note"
	TypePicture       = "Picture"
	TypeVideo         = "Video"
	TypeAudio         = "Audio"
	TypeComment       = "Comment"
)

// TypeRegistry maps type names to their definitions.
type TypeRegistry map[string]DocumentType

func folderType(name string, extraFacets ...string) DocumentType {
	return DocumentType{
		Name:    name,
		Facets:  append([]string{FacetFolderish}, extraFacets...),
		Schemas: []string{SchemaDublinCore},
	}
}

func blobType(name string) DocumentType {
	return DocumentType{
		Name:         name,
		Schemas:      []string{SchemaDublinCore, SchemaFile},
		HoldsPayload: true,
	}
}

// DefaultTypes returns the built-in document types.
func DefaultTypes() TypeRegistry {
	r := TypeRegistry{}
	for _, t := range []DocumentType{
		folderType(TypeRoot),
		folderType(TypeDomain),
		folderType(TypeWorkspaceRoot),
		folderType(TypeWorkspace),
		folderType(TypeFolder),
		folderType(TypeHiddenFolder, FacetHiddenInNavigation),
		blobType(TypeFile),
		blobType(TypeNote),
		blobType(TypePicture),
		blobType(TypeVideo),
		blobType(TypeAudio),
		// comments carry no dublincore metadata and no payload
		{Name: TypeComment, Schemas: []string{"comment"}},
	} {
		r[t.Name] = t
	}
	return r
}

// Lookup returns the type definition.
func (r TypeRegistry) Lookup(name string) (DocumentType, bool) {
	t, ok := r[name]
	return t, ok
}

// Instantiate fills the type-derived fields of a node.
func (t DocumentType) Instantiate(n *Node) {
	n.Type = t.Name
	n.Facets = slices.Clone(t.Facets)
	n.Schemas = slices.Clone(t.Schemas)
}
