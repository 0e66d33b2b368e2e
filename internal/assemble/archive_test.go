package assemble

import (
	"debug/elf"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/bitkit/getbc/internal/elfsec"
	"github.com/bitkit/getbc/internal/elftest"
	"github.com/bitkit/getbc/internal/toolexec"
)

func newArchiveAssembler(fs afero.Fs, r toolexec.Runner) ArchiveAssembler {
	return ArchiveAssembler{
		Config:  testConfig(),
		Fs:      fs,
		Locator: elfsec.NativeLocator{Fs: fs},
		Runner:  r,
	}
}

// extractInto makes the fake extraction tool populate the scratch directory
// with the given member payloads when "ar x" runs.
func extractInto(t *testing.T, fs afero.Fs, members map[string][]byte) func(call) {
	t.Helper()
	return func(c call) {
		if c.name != "ar" {
			return
		}
		for name, data := range members {
			require.NoError(t, afero.WriteFile(fs, filepath.Join(c.dir, name), data, 0o644))
		}
	}
}

func objectWithManifest(manifest string) []byte {
	payload := append([]byte(manifest), 0, 0) // NUL padding
	return elftest.Build(elf.ET_REL, ".llvm_bc", payload)
}

func TestArchiveAssemblePerDirectoryInvocations(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib/libfoo.a", []byte("!<arch>\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/x/p.bc", []byte("BC"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/y/q.bc", []byte("BC"), 0o644))

	r := &fakeRunner{}
	r.onRun = extractInto(t, fs, map[string][]byte{
		"m1.o": objectWithManifest("/x/p.bc\n"),
		"m2.o": objectWithManifest("/y/q.bc\n"),
	})

	a := newArchiveAssembler(fs, r)
	require.NoError(t, a.Assemble("/lib/libfoo.a", "/lib/out.bca"))

	require.Len(t, r.calls, 3)
	require.Equal(t, "ar", r.calls[0].name)
	require.Equal(t, []string{"x", "/lib/libfoo.a"}, r.calls[0].args)

	// One archiver run per directory group, from inside that directory,
	// with base filenames only.
	require.Equal(t, "llvm-ar", r.calls[1].name)
	require.Equal(t, "/x", r.calls[1].dir)
	require.Equal(t, []string{"rs", "/lib/out.bca", "p.bc"}, r.calls[1].args)
	require.Equal(t, "/y", r.calls[2].dir)
	require.Equal(t, []string{"rs", "/lib/out.bca", "q.bc"}, r.calls[2].args)
}

func TestArchiveAssembleDefaultOutputName(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib/libfoo.a", []byte("!<arch>\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/x/p.bc", []byte("BC"), 0o644))

	r := &fakeRunner{}
	r.onRun = extractInto(t, fs, map[string][]byte{"m.o": objectWithManifest("/x/p.bc\n")})
	require.NoError(t, newArchiveAssembler(fs, r).Assemble("/lib/libfoo.a", ""))

	want, err := filepath.Abs("libfoo.bca")
	require.NoError(t, err)
	require.Equal(t, []string{"rs", want, "p.bc"}, r.calls[1].args)
}

func TestArchiveAssembleAppendsExtensionWithoutArchiveSuffix(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib/bundle", []byte("!<arch>\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/x/p.bc", []byte("BC"), 0o644))

	r := &fakeRunner{}
	r.onRun = extractInto(t, fs, map[string][]byte{"m.o": objectWithManifest("/x/p.bc\n")})
	require.NoError(t, newArchiveAssembler(fs, r).Assemble("/lib/bundle", ""))

	want, err := filepath.Abs("bundle.bca")
	require.NoError(t, err)
	require.Equal(t, []string{"rs", want, "p.bc"}, r.calls[1].args)
}

func TestArchiveAssembleSkipsMissingBitcodeAndForeignMembers(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib/libfoo.a", []byte("!<arch>\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/x/p.bc", []byte("BC"), 0o644))
	// /y/q.bc intentionally absent; the README member is not an object.

	r := &fakeRunner{}
	r.onRun = extractInto(t, fs, map[string][]byte{
		"m1.o":   objectWithManifest("/x/p.bc\n"),
		"m2.o":   objectWithManifest("/y/q.bc\n"),
		"README": []byte("not an object"),
	})
	require.NoError(t, newArchiveAssembler(fs, r).Assemble("/lib/libfoo.a", "/out.bca"))

	require.Len(t, r.calls, 2)
	require.Equal(t, "/x", r.calls[1].dir)
	require.Equal(t, []string{"rs", "/out.bca", "p.bc"}, r.calls[1].args)
}

func TestArchiveAssembleExtractionFailureCleansUp(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib/libfoo.a", []byte("!<arch>\n"), 0o644))

	r := &fakeRunner{codes: map[string]int{"ar": 9}}
	err := newArchiveAssembler(fs, r).Assemble("/lib/libfoo.a", "/out.bca")

	var te *toolexec.ToolError
	require.ErrorAs(t, err, &te)
	require.Equal(t, 9, te.Code)

	exists, serr := afero.DirExists(fs, r.calls[0].dir)
	require.NoError(t, serr)
	require.False(t, exists, "scratch directory must be removed on failure")
}

func TestArchiveAssembleArchiverFailureStopsAtFirstGroup(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib/libfoo.a", []byte("!<arch>\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/x/p.bc", []byte("BC"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/y/q.bc", []byte("BC"), 0o644))

	r := &fakeRunner{codes: map[string]int{"llvm-ar": 2}}
	r.onRun = extractInto(t, fs, map[string][]byte{
		"m1.o": objectWithManifest("/x/p.bc\n"),
		"m2.o": objectWithManifest("/y/q.bc\n"),
	})
	err := newArchiveAssembler(fs, r).Assemble("/lib/libfoo.a", "/out.bca")

	var te *toolexec.ToolError
	require.ErrorAs(t, err, &te)
	require.Equal(t, 2, te.Code)
	require.Len(t, r.calls, 2, "second group must not run after a failure")
}

func TestArchiveAssembleNoBitcodeIsNotAnError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib/libfoo.a", []byte("!<arch>\n"), 0o644))

	r := &fakeRunner{}
	r.onRun = extractInto(t, fs, map[string][]byte{"README": []byte("text only")})
	require.NoError(t, newArchiveAssembler(fs, r).Assemble("/lib/libfoo.a", ""))
	require.Len(t, r.calls, 1, "only the extraction runs")
}

func TestArchiveAssembleDedupAcrossMembers(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib/libfoo.a", []byte("!<arch>\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/x/p.bc", []byte("BC"), 0o644))

	r := &fakeRunner{}
	r.onRun = extractInto(t, fs, map[string][]byte{
		"m1.o": objectWithManifest("/x/p.bc\n"),
		"m2.o": objectWithManifest("/x/p.bc\n"),
	})
	require.NoError(t, newArchiveAssembler(fs, r).Assemble("/lib/libfoo.a", "/out.bca"))

	require.Len(t, r.calls, 2)
	require.Equal(t, []string{"rs", "/out.bca", "p.bc"}, r.calls[1].args)
}
