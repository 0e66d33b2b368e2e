package elfsec

import (
	"debug/elf"
	"fmt"

	"github.com/spf13/afero"
)

// NativeLocator resolves sections by reading the ELF section headers
// directly, with no external tool. It is the fallback for hosts without a
// usable objdump.
type NativeLocator struct {
	Fs afero.Fs
}

func (l NativeLocator) Locate(section, path string) (Descriptor, error) {
	f, err := l.Fs.Open(path)
	if err != nil {
		return Descriptor{}, err
	}
	defer f.Close()

	obj, err := elf.NewFile(f)
	if err != nil {
		return Descriptor{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	sec := obj.Section(section)
	if sec == nil {
		return Descriptor{}, fmt.Errorf("%w: %s in %s", ErrSectionNotFound, section, path)
	}
	return Descriptor{Size: sec.Size, Offset: sec.Offset}, nil
}
