// Package filemanager creates repository leaves from uploaded payloads,
// picking the document type from the payload media type.
package filemanager

import (
	"context"
	"fmt"

	"github.com/marmos91/dittodav/internal/logger"
	"github.com/marmos91/dittodav/pkg/mediatype"
	"github.com/marmos91/dittodav/pkg/repository"
)

// Manager implements repository.FileImporter.
//
// Type selection by media type major:
//
//	image/*  -> Picture
//	video/*  -> Video
//	audio/*  -> Audio
//	text/*   -> Note
//	other    -> File
type Manager struct {
	// Types overrides the media-type major to document type mapping
	Types map[string]string

	// Fallback is used when no mapping matches (default repository.TypeFile)
	Fallback string
}

var _ repository.FileImporter = (*Manager)(nil)

// New returns a manager with the default type mapping.
func New() *Manager {
	return &Manager{
		Types: map[string]string{
			"image": repository.TypePicture,
			"video": repository.TypeVideo,
			"audio": repository.TypeAudio,
			"text":  repository.TypeNote,
		},
		Fallback: repository.TypeFile,
	}
}

// TypeFor returns the document type for a media type.
func (m *Manager) TypeFor(mediaType string) string {
	if t, ok := m.Types[mediatype.Major(mediaType)]; ok {
		return t
	}
	if m.Fallback != "" {
		return m.Fallback
	}
	return repository.TypeFile
}

// CreateFromPayload creates a leaf named name under parentPath.
//
// With overwrite set and a live leaf already at that name, the existing
// node keeps its identity and type and only its payload is replaced.
// Otherwise a new node is created, which fails with ErrAlreadyExists if the
// name is taken.
func (m *Manager) CreateFromPayload(ctx context.Context, session repository.Session, payload *repository.Payload, parentPath string, overwrite bool, name string) (*repository.Node, error) {
	if payload == nil {
		payload = repository.NewPayload(name, "", nil)
	}
	payload = payload.Clone()
	if payload.Filename == "" {
		payload.Filename = name
	}
	if payload.MediaType == "" {
		payload.MediaType = mediatype.Detect(payload.Filename, payload.Data)
	}

	targetPath := repository.JoinPath(parentPath, name)
	if overwrite {
		existing, err := session.Get(ctx, repository.PathRef(targetPath))
		switch {
		case err == nil && !existing.IsDeleted() && !existing.IsFolder():
			existing.Payload = payload
			updated, err := session.Save(ctx, existing)
			if err != nil {
				return nil, fmt.Errorf("failed to update %s: %w", targetPath, err)
			}
			logger.Debug("Updated payload of %s (%s)", targetPath, payload.MediaType)
			return updated, nil
		case err != nil && !repository.IsNotFound(err):
			return nil, err
		}
	}

	docType := m.TypeFor(payload.MediaType)
	node, err := session.Create(ctx, repository.PathRef(parentPath), repository.NodeSpec{
		Name:    name,
		Type:    docType,
		Title:   name,
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", targetPath, err)
	}
	logger.Debug("Created %s as %s (%s)", targetPath, docType, payload.MediaType)
	return node, nil
}
