package exif_scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadableFileSize(t *testing.T) {
	tests := []struct {
		size float64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
		{3 * 1024 * 1024 * 1024 * 1024 * 1024, "3072 TB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReadableFileSize(tt.size))
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.24, Round(1.2375, .5, 2))
	assert.Equal(t, 1.23, Round(1.2349, .5, 2))
	assert.Equal(t, 2.0, Round(1.5, .5, 0))
}

func TestFileObject(t *testing.T) {
	obj := NewFileObject("photos/cat.JPG", make([]byte, 2048))

	assert.Equal(t, "photos/cat.JPG", obj.ObjectKey())
	assert.Equal(t, ".JPG", obj.Extension())
	assert.Equal(t, int64(2048), obj.FileSize())
	assert.Equal(t, "2 KB", obj.ReadableFileSize())
	assert.Len(t, obj.FileDataAsByte(), 2048)
}
