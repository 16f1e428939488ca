package snapshot

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/google/uuid"

	"github.com/spaghettifunk/featherwing/engine/core"
)

type Format int

const (
	FormatPNG Format = iota
	FormatWebP
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	}
	return FormatPNG, fmt.Errorf("%w: unknown snapshot format '%s'", core.ErrInvalidConfig, s)
}

func (f Format) Extension() string {
	if f == FormatWebP {
		return "webp"
	}
	return "png"
}

func (f Format) String() string {
	return f.Extension()
}

// UnmarshalText lets TOML decode the format name directly.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	default:
		return png.Encode(w, img)
	}
}

/**
 * @brief Writes numbered snapshots into one directory. Each Writer picks a
 * random session id so runs never overwrite each other.
 */
type Writer struct {
	dir     string
	format  Format
	session uuid.UUID
	count   int
}

func NewWriter(dir string, format Format) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot directory: %w", err)
	}
	return &Writer{dir: dir, format: format, session: uuid.New()}, nil
}

func (w *Writer) Session() uuid.UUID {
	return w.session
}

// Count returns the number of snapshots written so far.
func (w *Writer) Count() int {
	return w.count
}

// Write encodes img into the next numbered file and returns its path.
func (w *Writer) Write(img image.Image) (string, error) {
	name := fmt.Sprintf("%s-%05d.%s", w.session.String()[:8], w.count, w.format.Extension())
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Encode(f, img, w.format); err != nil {
		f.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	w.count++
	return path, nil
}
