// Package mediatype computes the media type of payloads.
//
// Resolution order: a built-in extension table covering office formats the
// platform mime database often lacks, then the platform database through the
// mime package, then content sniffing with mimetype. The result is never
// empty; unknown content is application/octet-stream.
package mediatype

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Default is used when nothing better can be determined.
const Default = "application/octet-stream"

var extensions = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".html": "text/html",
	".xml":  "text/xml",
	".json": "application/json",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".mp3":  "audio/mpeg",
	".wav":  "audio/x-wav",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".doc":  "application/msword",
	".xls":  "application/vnd.ms-excel",
	".ppt":  "application/vnd.ms-powerpoint",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".odt":  "application/vnd.oasis.opendocument.text",
	".ods":  "application/vnd.oasis.opendocument.spreadsheet",
	".zip":  "application/zip",
}

// FromFilename returns the media type for the filename extension, or "".
func FromFilename(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return ""
	}
	if mt, ok := extensions[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return stripParams(mt)
	}
	return ""
}

// FromContent sniffs the content. Empty content yields "".
func FromContent(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	mt := stripParams(mimetype.Detect(data).String())
	if mt == Default {
		return ""
	}
	return mt
}

// Detect returns the media type for a payload.
func Detect(filename string, data []byte) string {
	if mt := FromFilename(filename); mt != "" {
		return mt
	}
	if mt := FromContent(data); mt != "" {
		return mt
	}
	return Default
}

// Major returns the top-level type ("image" for "image/png").
func Major(mediaType string) string {
	major, _, _ := strings.Cut(stripParams(mediaType), "/")
	return major
}

func stripParams(mt string) string {
	if base, _, err := mime.ParseMediaType(mt); err == nil {
		return base
	}
	return mt
}
