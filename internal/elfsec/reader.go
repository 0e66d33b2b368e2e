package elfsec

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// ReadSection returns the text payload of the described region. The linker
// right-pads fixed-size sections with NULs, so NUL bytes are stripped after
// decoding; they are never meaningful for this payload.
func ReadSection(fsys afero.Fs, path string, d Descriptor) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Seek(int64(d.Offset), io.SeekStart); err != nil {
		return "", fmt.Errorf("seeking to section in %s: %w", path, err)
	}
	buf := make([]byte, d.Size)
	if _, err := io.ReadFull(f, buf); err != nil {
		return "", fmt.Errorf("reading section from %s: %w", path, err)
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: %s", ErrBadEncoding, path)
	}
	return strings.ReplaceAll(string(buf), "\x00", ""), nil
}
