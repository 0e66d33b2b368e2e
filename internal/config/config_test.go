package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultBareNames(t *testing.T) {
	t.Setenv(ToolPathEnv, "")
	cfg := Default()
	require.Equal(t, "llvm-link", cfg.Linker)
	require.Equal(t, "llvm-ar", cfg.Archiver)
	require.Equal(t, "ar", cfg.Extractor)
	require.Equal(t, "objdump", cfg.ObjDump)
}

func TestDefaultPrefixed(t *testing.T) {
	t.Setenv(ToolPathEnv, "/opt/llvm/bin")
	cfg := Default()
	require.Equal(t, "/opt/llvm/bin/llvm-link", cfg.Linker)
	require.Equal(t, "/opt/llvm/bin/llvm-ar", cfg.Archiver)
}

func TestFormatConstants(t *testing.T) {
	cfg := Default()
	require.Equal(t, ".llvm_bc", cfg.SectionName)
	require.Equal(t, ".bc", cfg.ModuleExt)
	require.Equal(t, ".bca", cfg.ArchiveExt)
}
