package repository

import (
	"slices"
	"time"
)

// LifecycleState is the lifecycle state of a node.
type LifecycleState string

const (
	// StateActive is the state of every live node
	StateActive LifecycleState = "project"

	// StateDeleted marks a soft-deleted node. The node keeps its slot in the
	// tree (a "trash occupant") until it is renamed aside or purged.
	StateDeleted LifecycleState = "deleted"
)

// Facets and schemas consumed by the namespace adapter.
const (
	FacetFolderish          = "Folderish"
	FacetHiddenInNavigation = "HiddenInNavigation"

	SchemaDublinCore = "dublincore"
	SchemaFile       = "file"
)

// Node is a resolved handle to a repository item.
//
// Nodes are values owned by the repository: callers receive copies and
// persist changes through Session.Save. The namespace adapter only keeps
// them in its path cache for the lifetime of a session.
type Node struct {
	// ID is the stable identifier (UUID) of the node
	ID string `json:"id"`

	// ParentID is the identifier of the parent container ("" for the root)
	ParentID string `json:"parent_id,omitempty"`

	// Path is the absolute repository path ("/" for the root)
	Path string `json:"path"`

	// Name is the last path segment ("" for the root)
	Name string `json:"name"`

	// Type is the document type ("Folder", "File", "Workspace", ...)
	Type string `json:"type"`

	// Title is the descriptive title (dublincore)
	Title string `json:"title,omitempty"`

	// Facets and Schemas are copied from the document type at creation
	Facets  []string `json:"facets,omitempty"`
	Schemas []string `json:"schemas,omitempty"`

	// State is the lifecycle state
	State LifecycleState `json:"state"`

	// Payload is the attached binary content, nil when the node holds none
	Payload *Payload `json:"payload,omitempty"`

	// Lock is the current lock, nil when unlocked
	Lock *Lock `json:"lock,omitempty"`

	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// Payload is the binary content attached to a leaf node.
type Payload struct {
	// Filename is the stored filename, which may differ from the node name
	// (node names are sanitized, filenames keep the original spelling)
	Filename string `json:"filename"`

	// MediaType is the MIME type. Empty means "unknown, recompute on save".
	MediaType string `json:"media_type,omitempty"`

	// Length is the content length in bytes
	Length int64 `json:"length"`

	// Data is the content. Persistent repositories keep it out of the node
	// record and reload it on Get.
	Data []byte `json:"-"`
}

// Lock associates a node with its owning principal.
type Lock struct {
	Owner   string    `json:"owner"`
	Created time.Time `json:"created"`
}

// NewPayload builds a payload from raw bytes.
func NewPayload(filename, mediaType string, data []byte) *Payload {
	return &Payload{
		Filename:  filename,
		MediaType: mediaType,
		Length:    int64(len(data)),
		Data:      data,
	}
}

// IsFolder reports whether the node is container-typed.
func (n *Node) IsFolder() bool {
	return n.HasFacet(FacetFolderish)
}

// HasFacet reports whether the node carries the facet.
func (n *Node) HasFacet(facet string) bool {
	return slices.Contains(n.Facets, facet)
}

// HasSchema reports whether the node carries the schema.
func (n *Node) HasSchema(schema string) bool {
	return slices.Contains(n.Schemas, schema)
}

// IsDeleted reports whether the node is a soft-deleted trash occupant.
func (n *Node) IsDeleted() bool {
	return n.State == StateDeleted
}

// HasPayload reports whether the node carries binary content.
func (n *Node) HasPayload() bool {
	return n.Payload != nil
}

// Ref returns an identifier reference to the node.
func (n *Node) Ref() Ref {
	return IDRef(n.ID)
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Facets = slices.Clone(n.Facets)
	c.Schemas = slices.Clone(n.Schemas)
	c.Payload = n.Payload.Clone()
	if n.Lock != nil {
		l := *n.Lock
		c.Lock = &l
	}
	return &c
}

// Clone returns a deep copy of the payload.
func (p *Payload) Clone() *Payload {
	if p == nil {
		return nil
	}
	c := *p
	c.Data = slices.Clone(p.Data)
	return &c
}
