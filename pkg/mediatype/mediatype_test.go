package mediatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{"office extension", "report.docx", nil, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"extension wins over content", "notes.txt", []byte("%PDF-1.4"), "text/plain"},
		{"uppercase extension", "IMAGE.PNG", nil, "image/png"},
		{"sniffed pdf", "noext", []byte("%PDF-1.4\n%...."), "application/pdf"},
		{"sniffed text drops charset", "README", []byte("hello world\n"), "text/plain"},
		{"empty unknown", "blob", nil, Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.filename, tt.data))
		})
	}
}

func TestMajor(t *testing.T) {
	assert.Equal(t, "image", Major("image/png"))
	assert.Equal(t, "text", Major("text/plain; charset=utf-8"))
	assert.Equal(t, "", Major(""))
}
