package namespace

import (
	"net/url"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/marmos91/dittodav/internal/logger"
)

// filenameMatcher compares a requested name against a stored payload
// filename.
type filenameMatcher struct {
	name  string
	match func(requested, stored string) bool
}

// filenameMatchers bridge the encoding mismatches seen between node names
// and payload filenames. Order matters: the first match wins.
var filenameMatchers = []filenameMatcher{
	{"exact", func(requested, stored string) bool {
		return requested == stored
	}},
	{"path-escaped", func(requested, stored string) bool {
		return escapePath(requested) == stored
	}},
	{"form-encoded", func(requested, stored string) bool {
		return formEncode(requested) == stored
	}},
	{"latin1", func(requested, stored string) bool {
		decoded, err := charmap.ISO8859_1.NewDecoder().String(stored)
		if err != nil {
			logger.Warn("Cannot reinterpret filename %q as ISO-8859-1: %v", stored, err)
			return false
		}
		return decoded == requested
	}},
}

// matchFilename returns the name of the first matcher accepting the pair.
func matchFilename(requested, stored string) (string, bool) {
	for _, m := range filenameMatchers {
		if m.match(requested, stored) {
			return m.name, true
		}
	}
	return "", false
}

// escapePath percent-encodes the characters not allowed in a URL path,
// leaving '/' and the path sub-delimiters intact.
func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}

// formReplacer turns Go's query escaping into HTML form encoding as
// produced by most servlet containers: '*' stays literal and '~' is escaped.
var formReplacer = strings.NewReplacer("%2A", "*", "~", "%7E")

// formEncode applies application/x-www-form-urlencoded encoding (UTF-8,
// space as '+').
func formEncode(s string) string {
	return formReplacer.Replace(url.QueryEscape(s))
}
