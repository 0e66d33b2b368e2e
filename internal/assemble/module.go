// Package assemble rebuilds bitcode modules and archives from the manifests
// embedded in compiled binaries. Both assemblers only orchestrate: linking
// and archiving semantics belong to the external tools they invoke.
package assemble

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/bitkit/getbc/internal/config"
	"github.com/bitkit/getbc/internal/elfsec"
	"github.com/bitkit/getbc/internal/manifest"
	"github.com/bitkit/getbc/internal/toolexec"
)

// ModuleAssembler links the bitcode files listed in an executable's (or
// shared object's) manifest into a single module.
type ModuleAssembler struct {
	Config  config.Config
	Fs      afero.Fs
	Locator elfsec.Locator
	Runner  toolexec.Runner
}

// Assemble reads input's manifest and invokes the linker over its entries.
// An empty output defaults to input plus the module extension. Every listed
// file must exist; a gap aborts before the linker runs. The linker's exit
// code surfaces as a ToolError.
//
// An executable's manifest need not cover every bitcode file its libraries
// reference; only what was actually linked in is listed.
func (a ModuleAssembler) Assemble(input, output string) error {
	desc, err := a.Locator.Locate(a.Config.SectionName, input)
	if err != nil {
		return err
	}
	if desc.Size == 0 {
		return fmt.Errorf("%w: %s in %s", ErrEmptySection, a.Config.SectionName, input)
	}

	text, err := elfsec.ReadSection(a.Fs, input, desc)
	if err != nil {
		return err
	}
	entries := manifest.Parse(text)
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s in %s", ErrEmptySection, a.Config.SectionName, input)
	}
	log.Debugf("manifest of %s: %v", input, entries)

	for _, entry := range entries {
		ok, err := afero.Exists(a.Fs, entry)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s (listed by %s)", ErrMissingEntry, entry, input)
		}
	}

	if output == "" {
		output = input + a.Config.ModuleExt
	}

	args := append([]string{"-o", output}, entries...)
	log.Debugf("linking: %s %v", a.Config.Linker, args)
	code, err := a.Runner.Run("", a.Config.Linker, args...)
	if err != nil {
		return err
	}
	if code != 0 {
		return toolexec.NewToolError(code, nil, a.Config.Linker, args...)
	}
	return nil
}
