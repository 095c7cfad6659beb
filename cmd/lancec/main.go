// Command lancec compiles a LANCE source file to RV32IM assembly, chaining
// pkg/frontend.Parse into pkg/driver.Compile the way cmd/minzc/main.go
// chains parser.New/semantic.NewAnalyzer into codegen.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lance-lang/lancec/internal/buildinfo"
	"github.com/lance-lang/lancec/pkg/diagnostics"
	"github.com/lance-lang/lancec/pkg/driver"
	"github.com/lance-lang/lancec/pkg/frontend"
)

var (
	outputFile       string
	debug            bool
	showVersion      bool
	watch            bool
	requireToolchain string
)

var rootCmd = &cobra.Command{
	Use:   "lancec [source file]",
	Short: "LANCE compiler for 32-bit RISC-V (RV32IM)",
	Long: `lancec compiles a LANCE source file (integers, arrays, read/write,
if/while) straight to RV32IM assembly text.

EXAMPLES:
  lancec hello.lance                 # writes hello.s
  lancec hello.lance -o out.s        # choose the output path
  lancec hello.lance -d              # dump control-flow/liveness/regalloc logs
  lancec hello.lance --watch         # recompile on every save`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Println(buildinfo.String())
			return nil
		}
		if requireToolchain != "" {
			if err := buildinfo.CheckToolchain(requireToolchain); err != nil {
				return err
			}
		}
		if len(args) == 0 {
			return cmd.Help()
		}
		sourceFile := args[0]

		if watch {
			return watchAndCompile(sourceFile)
		}
		return compile(sourceFile)
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: input with .s extension)")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "write _frontend/_controlFlow/_dataFlow/_regAlloc debug logs next to the output")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "recompile whenever the source file changes")
	rootCmd.Flags().StringVar(&requireToolchain, "require-toolchain", "", "fail unless this build satisfies the given semver constraint (e.g. \">=0.1.0, <1.0.0\")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func destinationFor(sourceFile string) string {
	if outputFile != "" {
		return outputFile
	}
	ext := filepath.Ext(sourceFile)
	return strings.TrimSuffix(sourceFile, ext) + ".s"
}

func compile(sourceFile string) error {
	if debug {
		fmt.Printf("Compiling %s...\n", sourceFile)
	}

	src, err := os.ReadFile(sourceFile)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	var diagOut strings.Builder
	sink := diagnostics.NewSink(&diagOut)
	prog, err := frontend.Parse(string(src), sourceFile, sink)
	fmt.Fprint(os.Stderr, diagOut.String())
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if sink.HasErrors() {
		return fmt.Errorf("%d error(s) during parsing", sink.Errors)
	}

	dest := destinationFor(sourceFile)
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	logBase := strings.TrimSuffix(dest, filepath.Ext(dest))
	d := driver.New(debug, logBase)
	if err := d.WriteFrontendLog(prog); err != nil {
		return fmt.Errorf("write frontend log: %w", err)
	}
	if err := d.Compile(prog, out); err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	if debug {
		fmt.Printf("Wrote %s\n", dest)
	}
	return nil
}

// watchAndCompile compiles sourceFile once, then recompiles it on every
// write event until the process is interrupted. There is no debounce: a
// save that triggers several rapid events just recompiles several times,
// same tradeoff fsnotify's own example watcher makes.
func watchAndCompile(sourceFile string) error {
	if err := compile(sourceFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(sourceFile)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	fmt.Printf("Watching %s for changes (Ctrl-C to stop)...\n", sourceFile)
	abs, err := filepath.Abs(sourceFile)
	if err != nil {
		return fmt.Errorf("resolve source path: %w", err)
	}

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			eventAbs, err := filepath.Abs(event.Name)
			if err != nil || eventAbs != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := compile(sourceFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
