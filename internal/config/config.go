// Package config resolves the external-tool configuration for one getbc
// invocation. The result is an explicit struct handed to the assemblers, not
// ambient global state, so tests can inject fake tool paths.
package config

import (
	"os"
	"path/filepath"
)

// ToolPathEnv names the directory prefix searched for the default linker and
// archiver binaries. When unset, bare tool names are resolved via PATH.
const ToolPathEnv = "LLVM_TOOLS_PATH"

const (
	// SectionName is the ELF section carrying the bitcode manifest.
	SectionName = ".llvm_bc"

	// ModuleExt is appended to the input path to name the linked module.
	ModuleExt = ".bc"

	// ArchiveExt replaces (or is appended to) the input archive suffix to
	// name the bitcode archive.
	ArchiveExt = ".bca"

	defaultLinker   = "llvm-link"
	defaultArchiver = "llvm-ar"
	defaultObjDump  = "objdump"
	// Extraction must use a plain ar: llvm-ar cannot unpack every archive
	// flavor the system toolchain produces.
	defaultExtractor = "ar"
)

// Config holds the resolved tool paths and format constants for one run.
type Config struct {
	SectionName string
	Linker      string
	Archiver    string
	Extractor   string
	ObjDump     string
	ModuleExt   string
	ArchiveExt  string
}

// Default returns a Config with tool paths resolved from ToolPathEnv.
func Default() Config {
	prefix := os.Getenv(ToolPathEnv)
	return Config{
		SectionName: SectionName,
		Linker:      toolPath(prefix, defaultLinker),
		Archiver:    toolPath(prefix, defaultArchiver),
		Extractor:   defaultExtractor,
		ObjDump:     defaultObjDump,
		ModuleExt:   ModuleExt,
		ArchiveExt:  ArchiveExt,
	}
}

func toolPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return filepath.Join(prefix, name)
}
