// Package elfsec locates and reads a single named section inside an ELF
// object. Nothing else about the object format is interpreted here.
package elfsec

import "errors"

var (
	// ErrSectionNotFound means the object carries no section with the
	// requested name.
	ErrSectionNotFound = errors.New("section not found")

	// ErrBadEncoding means the section bytes are not valid UTF-8 text,
	// which points at a name collision or a corrupted object.
	ErrBadEncoding = errors.New("section is not valid UTF-8 text")
)

// Descriptor describes one named region of an object file. It is computed on
// demand per file and never persisted.
type Descriptor struct {
	Size   uint64
	Offset uint64
}

// Locator resolves a section name to its Descriptor within an object file.
// The default implementation shells out to objdump; NativeLocator parses the
// ELF headers directly. Callers never depend on which one they hold.
type Locator interface {
	Locate(section, path string) (Descriptor, error)
}
