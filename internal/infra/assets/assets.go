// internal/infra/assets/assets.go
package assets

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/afero"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/chat"
)

// ErrNoImage means no image path is configured.
var ErrNoImage = errors.New("no image configured")

// Loader reads attachment files from a filesystem.
type Loader struct {
	fs afero.Fs
}

// NewLoader returns a Loader over fs. Production code passes afero.NewOsFs().
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Load reads the image at path. The file is read on every call so the
// asset can be replaced without a restart.
func (l *Loader) Load(path string) (chat.Image, error) {
	if path == "" {
		return chat.Image{}, ErrNoImage
	}
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return chat.Image{}, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	if len(data) == 0 {
		return chat.Image{}, fmt.Errorf("image %s is empty", path)
	}
	return chat.Image{
		Path:     path,
		Data:     data,
		MimeType: http.DetectContentType(data),
	}, nil
}
