// Package elftest synthesizes minimal ELF64 objects for tests: a single
// named section with a known payload, plus the section-name string table.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/spf13/afero"
)

const (
	ehdrSize = 64
	shdrSize = 64
)

// Build returns the bytes of a little-endian ELF64 file of the given type
// carrying one section named section with the given payload.
func Build(typ elf.Type, section string, payload []byte) []byte {
	shstrtab := buildStrtab(section)
	payloadOff := uint64(ehdrSize)
	strtabOff := payloadOff + uint64(len(payload))
	shoff := align8(strtabOff + uint64(len(shstrtab)))

	var buf bytes.Buffer
	writeEhdr(&buf, typ, shoff)
	buf.Write(payload)
	buf.Write(shstrtab)
	for buf.Len() < int(shoff) {
		buf.WriteByte(0)
	}

	// Index 0: the mandatory null section header.
	buf.Write(make([]byte, shdrSize))
	// Index 1: the named section.
	writeShdr(&buf, shdr{
		name:   1,
		typ:    uint32(elf.SHT_PROGBITS),
		offset: payloadOff,
		size:   uint64(len(payload)),
	})
	// Index 2: .shstrtab.
	writeShdr(&buf, shdr{
		name:   uint32(2 + len(section)),
		typ:    uint32(elf.SHT_STRTAB),
		offset: strtabOff,
		size:   uint64(len(shstrtab)),
	})
	return buf.Bytes()
}

// Write builds an object via Build and writes it at path on fsys.
func Write(fsys afero.Fs, path string, typ elf.Type, section string, payload []byte) error {
	return afero.WriteFile(fsys, path, Build(typ, section, payload), 0o644)
}

func buildStrtab(section string) []byte {
	var b bytes.Buffer
	b.WriteByte(0)
	b.WriteString(section)
	b.WriteByte(0)
	b.WriteString(".shstrtab")
	b.WriteByte(0)
	return b.Bytes()
}

func writeEhdr(buf *bytes.Buffer, typ elf.Type, shoff uint64) {
	ident := make([]byte, 16)
	copy(ident, elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	buf.Write(ident)

	le := binary.LittleEndian
	binary.Write(buf, le, uint16(typ))
	binary.Write(buf, le, uint16(elf.EM_X86_64))
	binary.Write(buf, le, uint32(elf.EV_CURRENT))
	binary.Write(buf, le, uint64(0)) // entry
	binary.Write(buf, le, uint64(0)) // phoff
	binary.Write(buf, le, shoff)
	binary.Write(buf, le, uint32(0))        // flags
	binary.Write(buf, le, uint16(ehdrSize)) // ehsize
	binary.Write(buf, le, uint16(0))        // phentsize
	binary.Write(buf, le, uint16(0))        // phnum
	binary.Write(buf, le, uint16(shdrSize)) // shentsize
	binary.Write(buf, le, uint16(3))        // shnum
	binary.Write(buf, le, uint16(2))        // shstrndx
}

type shdr struct {
	name   uint32
	typ    uint32
	offset uint64
	size   uint64
}

func writeShdr(buf *bytes.Buffer, h shdr) {
	le := binary.LittleEndian
	binary.Write(buf, le, h.name)
	binary.Write(buf, le, h.typ)
	binary.Write(buf, le, uint64(0)) // flags
	binary.Write(buf, le, uint64(0)) // addr
	binary.Write(buf, le, h.offset)
	binary.Write(buf, le, h.size)
	binary.Write(buf, le, uint32(0)) // link
	binary.Write(buf, le, uint32(0)) // info
	binary.Write(buf, le, uint64(1)) // addralign
	binary.Write(buf, le, uint64(0)) // entsize
}

func align8(v uint64) uint64 {
	return (v + 7) &^ 7
}
