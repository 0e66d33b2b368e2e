// Package command implements the getbc command line.
package command

import (
	"errors"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bitkit/getbc/internal/assemble"
	"github.com/bitkit/getbc/internal/config"
	"github.com/bitkit/getbc/internal/elfsec"
	"github.com/bitkit/getbc/internal/filekind"
	"github.com/bitkit/getbc/internal/toolexec"
)

// ErrUnsupportedInput means the input is neither an ELF executable, a shared
// object, nor a static archive.
var ErrUnsupportedInput = errors.New("unsupported input file type")

type params struct {
	linker    string
	archiver  string
	output    string
	verbose   bool
	nativeELF bool
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	root := newRootCommand(afero.NewOsFs(), toolexec.ExecRunner{})
	if err := root.Execute(); err != nil {
		log.Error(err)
		return ExitCode(err)
	}
	return 0
}

const longHelp = `getbc reads the bitcode-manifest section out of a compiled executable,
shared object or static archive and rebuilds the listed bitcode files into a
single module (via the external linker) or a bitcode archive (via the
external archiver).`

func newRootCommand(fs afero.Fs, runner toolexec.Runner) *cobra.Command {
	var p params
	cmd := &cobra.Command{
		Use:           "getbc [flags] <input>",
		Short:         "Recover embedded bitcode manifests and reassemble them",
		Long:          longHelp,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.verbose {
				log.SetLevel(log.DebugLevel)
			}
			return run(p, fs, runner, args[0])
		},
	}
	cmd.Flags().StringVarP(&p.linker, "linker", "l", "", "path to the bitcode linker (default: $"+config.ToolPathEnv+"/llvm-link)")
	cmd.Flags().StringVarP(&p.archiver, "archiver", "a", "", "path to the bitcode archiver (default: $"+config.ToolPathEnv+"/llvm-ar)")
	cmd.Flags().StringVarP(&p.output, "output", "o", "", "output file path (parent directory must exist)")
	cmd.Flags().BoolVarP(&p.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVar(&p.nativeELF, "native-elf", false, "locate sections by parsing ELF headers instead of calling objdump")
	return cmd
}

// run validates the invocation, classifies the input and dispatches to the
// matching assembler. All validation happens before any external tool runs.
func run(p params, fs afero.Fs, runner toolexec.Runner, input string) error {
	ok, err := afero.Exists(fs, input)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("input %s does not exist", input)
	}

	if p.output != "" {
		parent := filepath.Dir(p.output)
		ok, err := afero.DirExists(fs, parent)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("output directory %s does not exist", parent)
		}
	}

	cfg := config.Default()
	if p.linker != "" {
		cfg.Linker = p.linker
	}
	if p.archiver != "" {
		cfg.Archiver = p.archiver
	}

	var locator elfsec.Locator = elfsec.ObjdumpLocator{Tool: cfg.ObjDump, Runner: runner}
	if p.nativeELF {
		locator = elfsec.NativeLocator{Fs: fs}
	}

	kind, err := filekind.Detect(fs, input)
	if err != nil {
		return err
	}
	log.Debugf("%s classified as %s", input, kind)

	switch kind {
	case filekind.Executable, filekind.SharedObject:
		a := assemble.ModuleAssembler{Config: cfg, Fs: fs, Locator: locator, Runner: runner}
		return a.Assemble(input, p.output)
	case filekind.StaticArchive:
		a := assemble.ArchiveAssembler{Config: cfg, Fs: fs, Locator: locator, Runner: runner}
		return a.Assemble(input, p.output)
	default:
		return fmt.Errorf("%w: %s is a %s", ErrUnsupportedInput, input, kind)
	}
}

// ExitCode maps an error to the process exit code: the failing external
// tool's own code when there is one, 1 for every other fatal condition.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var te *toolexec.ToolError
	if errors.As(err, &te) && te.Code > 0 {
		return te.Code
	}
	return 1
}
