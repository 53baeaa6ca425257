/*
Ictogen builds and drives generated compilers from declarative lexer-rule and
grammar-rule files.

Usage:

	ictogen build <lexer_rules> <grammar_rules> [-o path]
	ictogen compile <lexer_rules> <grammar_rules> <source> [-o path]
	ictogen test-compiler <lexer_rules> <grammar_rules> [-c compiler_path] [-p program_dir] [-o output_dir]

build runs generate_compiler over the given rule files and writes the
resulting artifact (a TOML manifest plus a serialized DFA/grammar blob) to
the output directory. compile is a one-shot build-then-run over a single
source file. test-compiler builds (or loads, with -c) a compiler and runs it
over every ".src" file in program_dir, then drops into an interactive
readline prompt for ad hoc exploration.

Exit codes: 0 success, 1 failure.
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/pflag"

	"github.com/dekarrin/ictogen/internal/artifact"
	"github.com/dekarrin/ictogen/internal/icerrors"
	"github.com/dekarrin/ictogen/internal/pipeline"
	"github.com/dekarrin/ictogen/internal/rulesfile"
	"github.com/dekarrin/ictogen/internal/version"
)

const (
	// ExitSuccess indicates a successful invocation.
	ExitSuccess = iota

	// ExitUsageError indicates bad or missing CLI arguments.
	ExitUsageError

	// ExitBuildError indicates generate_compiler failed (regex/grammar
	// diagnostic).
	ExitBuildError

	// ExitCompileError indicates a compile call failed (lexical, syntactic,
	// or semantic diagnostic).
	ExitCompileError
)

var returnCode = ExitSuccess

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	if len(os.Args) < 2 {
		printUsage()
		returnCode = ExitUsageError
		return
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:])
	case "compile":
		runCompile(os.Args[2:])
	case "test-compiler":
		runTestCompiler(os.Args[2:])
	case "-v", "--version":
		fmt.Println(version.Current)
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown subcommand %q\n", os.Args[1])
		printUsage()
		returnCode = ExitUsageError
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  ictogen build <lexer_rules> <grammar_rules> [-o path]")
	fmt.Fprintln(os.Stderr, "  ictogen compile <lexer_rules> <grammar_rules> <source> [-o path]")
	fmt.Fprintln(os.Stderr, "  ictogen test-compiler <lexer_rules> <grammar_rules> [-c compiler_path] [-p program_dir] [-o output_dir]")
}

// loadRuleFiles reads and parses the lexer-rule and grammar-rule files named
// by the first two positional args.
func loadRuleFiles(lexerPath, grammarPath string) (pipeline.Compiler, string, string, bool) {
	lexerText, err := os.ReadFile(lexerPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading %s: %s\n", lexerPath, err)
		return pipeline.Compiler{}, "", "", false
	}
	grammarText, err := os.ReadFile(grammarPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading %s: %s\n", grammarPath, err)
		return pipeline.Compiler{}, "", "", false
	}

	lexerRules, err := rulesfile.ParseLexerRules(string(lexerText))
	if err != nil {
		printDiagnostic(err)
		return pipeline.Compiler{}, "", "", false
	}
	grammarRules, meta, err := rulesfile.ParseGrammarRules(string(grammarText))
	if err != nil {
		printDiagnostic(err)
		return pipeline.Compiler{}, "", "", false
	}

	spinner, _ := pterm.DefaultSpinner.Start("compiling regex rules to a DFA")
	compiler, err := pipeline.GenerateCompiler(lexerRules, grammarRules, meta)
	if err != nil {
		spinner.Fail("build failed")
		printDiagnostic(err)
		return pipeline.Compiler{}, "", "", false
	}
	spinner.Success("DFA and LL(1) grammar ready")

	for _, d := range compiler.Defects {
		pterm.Warning.Printf("grammar defect: %s\n", d)
	}

	return *compiler, string(lexerText), string(grammarText), true
}

func printDiagnostic(err error) {
	if icerrors.KindOf(err) != "" {
		fmt.Fprintln(os.Stderr, icerrors.Diagnostic(err))
	} else {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
	}
}

func runBuild(args []string) {
	fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
	outDir := fs.StringP("output", "o", "build", "directory to write the generated-compiler artifact to")
	if err := fs.Parse(args); err != nil {
		returnCode = ExitUsageError
		return
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "ERROR: build requires <lexer_rules> <grammar_rules>")
		returnCode = ExitUsageError
		return
	}

	compiler, lexerText, grammarText, ok := loadRuleFiles(fs.Arg(0), fs.Arg(1))
	if !ok {
		returnCode = ExitBuildError
		return
	}

	payload := artifact.Payload{
		DFA:     compiler.DFA,
		Grammar: compiler.Grammar,
		Meta:    compiler.Meta,
		Defects: compiler.Defects,
	}
	manifest, err := artifact.Save(*outDir, payload, lexerText, grammarText)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitBuildError
		return
	}

	pterm.Success.Printf("built compiler %s in %s\n", manifest.BuildID, *outDir)
}

func runCompile(args []string) {
	fs := pflag.NewFlagSet("compile", pflag.ContinueOnError)
	outPath := fs.StringP("output", "o", "", "file to write TAC output to (default: stdout)")
	if err := fs.Parse(args); err != nil {
		returnCode = ExitUsageError
		return
	}
	if fs.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "ERROR: compile requires <lexer_rules> <grammar_rules> <source>")
		returnCode = ExitUsageError
		return
	}

	compiler, _, _, ok := loadRuleFiles(fs.Arg(0), fs.Arg(1))
	if !ok {
		returnCode = ExitBuildError
		return
	}

	sourceText, err := os.ReadFile(fs.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading %s: %s\n", fs.Arg(2), err)
		returnCode = ExitUsageError
		return
	}

	tacText, err := compiler.Compile(string(sourceText))
	if err != nil {
		printDiagnostic(err)
		returnCode = ExitCompileError
		return
	}

	if *outPath == "" {
		fmt.Print(tacText)
	} else if err := os.WriteFile(*outPath, []byte(tacText), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: writing %s: %s\n", *outPath, err)
		returnCode = ExitCompileError
	}
}

func runTestCompiler(args []string) {
	fs := pflag.NewFlagSet("test-compiler", pflag.ContinueOnError)
	compilerPath := fs.StringP("compiler", "c", "", "path to a previously-built artifact directory (skips regenerating one)")
	programDir := fs.StringP("program-dir", "p", "programs", "directory of .src files to compile")
	outDir := fs.StringP("output", "o", "out", "directory to write each program's .tac output to")
	if err := fs.Parse(args); err != nil {
		returnCode = ExitUsageError
		return
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "ERROR: test-compiler requires <lexer_rules> <grammar_rules>")
		returnCode = ExitUsageError
		return
	}

	var compiler pipeline.Compiler
	if *compilerPath != "" {
		payload, _, err := artifact.Load(*compilerPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: loading %s: %s\n", *compilerPath, err)
			returnCode = ExitBuildError
			return
		}
		compiler = pipeline.Compiler{
			DFA:     payload.DFA,
			Grammar: payload.Grammar,
			Meta:    payload.Meta,
			Defects: payload.Defects,
		}
		table, err := payload.Grammar.LLParseTable()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: rebuilding LL(1) table: %s\n", err)
			returnCode = ExitBuildError
			return
		}
		compiler.Table = table
	} else {
		built, _, _, ok := loadRuleFiles(fs.Arg(0), fs.Arg(1))
		if !ok {
			returnCode = ExitBuildError
			return
		}
		compiler = built
	}

	entries, err := os.ReadDir(*programDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading %s: %s\n", *programDir, err)
		returnCode = ExitUsageError
		return
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: creating %s: %s\n", *outDir, err)
		returnCode = ExitUsageError
		return
	}

	failures := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".src") {
			continue
		}
		srcPath := filepath.Join(*programDir, e.Name())
		text, err := os.ReadFile(srcPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: reading %s: %s\n", srcPath, err)
			failures++
			continue
		}

		tacText, err := compiler.Compile(string(text))
		if err != nil {
			pterm.Error.Printf("%s: %s\n", e.Name(), err)
			printDiagnostic(err)
			failures++
			continue
		}

		outPath := filepath.Join(*outDir, strings.TrimSuffix(e.Name(), ".src")+".tac")
		if err := os.WriteFile(outPath, []byte(tacText), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: writing %s: %s\n", outPath, err)
			failures++
			continue
		}
		pterm.Success.Printf("%s -> %s\n", e.Name(), outPath)
	}

	if failures > 0 {
		returnCode = ExitCompileError
	}

	runInteractive(&compiler)
}

// runInteractive drops into a readline prompt for ad hoc one-line compiles
// against the already-built compiler, the same readline-backed session shape
// the teacher's internal/input.InteractiveCommandReader wraps for its own
// REPL. Only entered when stdin is a terminal; batch/CI invocations (piped
// or redirected stdin) skip it entirely.
func runInteractive(compiler *pipeline.Compiler) {
	if stat, err := os.Stdin.Stat(); err != nil || (stat.Mode()&os.ModeCharDevice) == 0 {
		return
	}

	rl, err := readline.NewEx(&readline.Config{Prompt: "ictogen> "})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: starting readline: %s\n", err)
		return
	}
	defer rl.Close()

	fmt.Println("entering interactive compile mode; one source line at a time, Ctrl-D to exit")
	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		tacText, err := compiler.Compile(line)
		if err != nil {
			printDiagnostic(err)
			continue
		}
		fmt.Print(tacText)
	}
}
