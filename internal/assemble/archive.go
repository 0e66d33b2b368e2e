package assemble

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/bitkit/getbc/internal/config"
	"github.com/bitkit/getbc/internal/elfsec"
	"github.com/bitkit/getbc/internal/filekind"
	"github.com/bitkit/getbc/internal/manifest"
	"github.com/bitkit/getbc/internal/toolexec"
)

// ArchiveAssembler rebuilds a bitcode archive mirroring a native static
// archive: every member object's manifest contributes its bitcode files.
type ArchiveAssembler struct {
	Config  config.Config
	Fs      afero.Fs
	Locator elfsec.Locator
	Runner  toolexec.Runner
}

// Assemble extracts the archive members into a scratch directory, harvests
// each member's manifest, then rebuilds an archive from the referenced
// bitcode files. Unlike the module path, a listed file that does not exist is
// a per-entry warning, not a failure: one stale reference does not invalidate
// the rest of the archive.
func (a ArchiveAssembler) Assemble(input, output string) error {
	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	output, err = a.outputPath(input, output)
	if err != nil {
		return err
	}

	harvested, err := a.extractAndHarvest(absIn)
	if err != nil {
		return err
	}
	if len(harvested) == 0 {
		log.Warnf("no bitcode files referenced by any member of %s; nothing to archive", input)
		return nil
	}

	groups := manifest.NewDirGroups()
	for _, path := range harvested {
		groups.Add(path)
	}

	// The archiver must run from inside each group's directory so the
	// resulting archive holds base filenames, not absolute paths.
	for _, dir := range groups.Dirs() {
		args := append([]string{"rs", output}, groups.Files(dir)...)
		log.Debugf("archiving: %s %v (in %s)", a.Config.Archiver, args, dir)
		code, err := a.Runner.Run(dir, a.Config.Archiver, args...)
		if err != nil {
			return err
		}
		if code != 0 {
			return toolexec.NewToolError(code, nil, a.Config.Archiver, args...)
		}
	}
	return nil
}

// extractAndHarvest unpacks the archive into a temporary directory, collects
// all existing bitcode paths referenced by its object members, and removes
// the temporary directory on every exit path.
func (a ArchiveAssembler) extractAndHarvest(absIn string) ([]string, error) {
	tmp, err := afero.TempDir(a.Fs, "", "getbc-")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := a.Fs.RemoveAll(tmp); err != nil {
			log.Warnf("could not remove scratch directory %s: %v", tmp, err)
		}
	}()

	args := []string{"x", absIn}
	code, err := a.Runner.Run(tmp, a.Config.Extractor, args...)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, toolexec.NewToolError(code, nil, a.Config.Extractor, args...)
	}

	var harvested []string
	walk := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		paths, err := a.harvestMember(path)
		if err != nil {
			return err
		}
		harvested = append(harvested, paths...)
		return nil
	}
	if err := afero.Walk(a.Fs, tmp, walk); err != nil {
		return nil, err
	}
	return harvested, nil
}

// harvestMember returns the existing bitcode paths listed by one extracted
// member. Members that are not relocatable objects, carry no manifest, or
// reference vanished files are skipped with a warning; archives routinely
// hold non-bitcode members.
func (a ArchiveAssembler) harvestMember(path string) ([]string, error) {
	name := filepath.Base(path)
	kind, err := filekind.Detect(a.Fs, path)
	if err != nil {
		return nil, err
	}
	if kind != filekind.Object {
		log.Warnf("skipping archive member %s: %s", name, kind)
		return nil, nil
	}

	desc, err := a.Locator.Locate(a.Config.SectionName, path)
	if err != nil {
		log.Warnf("skipping archive member %s: %v", name, err)
		return nil, nil
	}
	text, err := elfsec.ReadSection(a.Fs, path, desc)
	if err != nil {
		log.Warnf("skipping archive member %s: %v", name, err)
		return nil, nil
	}

	var paths []string
	for _, entry := range manifest.Parse(text) {
		ok, err := afero.Exists(a.Fs, entry)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Warnf("bitcode file %s listed by member %s does not exist; skipping", entry, name)
			continue
		}
		paths = append(paths, entry)
	}
	log.Debugf("manifest of member %s: %v", name, paths)
	return paths, nil
}

// outputPath defaults the output to the input's base name with the archive
// suffix swapped for the bitcode-archive extension, then absolutizes it: the
// archiver runs from inside each group directory, so a relative output would
// scatter archives across them.
func (a ArchiveAssembler) outputPath(input, output string) (string, error) {
	if output == "" {
		base := filepath.Base(input)
		if strings.HasSuffix(base, ".a") {
			output = strings.TrimSuffix(base, ".a") + a.Config.ArchiveExt
		} else {
			output = base + a.Config.ArchiveExt
		}
	}
	return filepath.Abs(output)
}
