package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/celisp/lisp"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

var (
	traceFlag string
	heapFlag  int
	initFlag  string
	exprFlag  []string
)

var rootCmd = &cobra.Command{
	Use:   "lrepl [file …]",
	Short: "Read-eval-print loop for celisp",
	Long: `L.REPL evaluates celisp expressions interactively. Files given as
arguments, expressions given with --expr and input which is not a terminal
are evaluated without prompting.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&traceFlag, "trace", "Info", "Trace level [Debug|Info|Error]")
	rootCmd.Flags().IntVar(&heapFlag, "heap", 0, "Heap size in cells (default from configuration)")
	rootCmd.Flags().StringVar(&initFlag, "init", "", "Initial load")
	rootCmd.Flags().StringArrayVarP(&exprFlag, "expr", "e", nil, "Evaluate an expression and exit")
}

// main() starts L.REPL, where users may enter Lisp expressions. L.REPL will
// evaluate them and print out the result.
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// set up logging
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tracer().SetTraceLevel(tracing.LevelInfo) // will set the correct level later
	tracer().Infof("Trace level is %s", traceFlag)
	level := tracing.TraceLevelFromString(traceFlag)
	tracer().SetTraceLevel(level)
	for _, key := range []string{"celisp.runtime", "celisp.lisp", "celisp.reader"} {
		tracing.Select(key).SetTraceLevel(level)
	}
	//
	intp := lisp.NewInterpreter(lisp.WithHeapSize(heapFlag))
	defer intp.Close()
	loadInitFile(intp, initFlag) // init file name provided by flag
	//
	if len(exprFlag) > 0 {
		return intp.Run(strings.NewReader(strings.Join(exprFlag, "\n")), os.Stdout)
	}
	if len(args) > 0 {
		for _, name := range args {
			if err := runFile(intp, name, os.Stdout); err != nil {
				return err
			}
		}
		return nil
	}
	if !readline.IsTerminal(int(os.Stdin.Fd())) {
		return intp.Run(os.Stdin, os.Stdout)
	}
	//
	// interactive mode
	pterm.Info.Println("Welcome to L.REPL") // colored welcome message
	rl, err := readline.New(prompt)
	if err != nil {
		tracer().Errorf(err.Error())
		return err
	}
	defer rl.Close()
	tracer().Infof("Quit with <ctrl>D") // inform user how to stop the CLI
	r := &repl{intp: intp, rl: rl}
	r.loop()
	println("Good bye!")
	return nil
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func runFile(intp *lisp.Interpreter, name string, w *os.File) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", name, err)
	}
	defer f.Close()
	return intp.Run(f, w)
}

// loadInitFile evaluates the expressions of an init file. Results are not
// printed, errors are traced.
func loadInitFile(intp *lisp.Interpreter, filename string) {
	if filename == "" {
		return
	}
	f, err := os.Open(filename)
	if err != nil {
		tracer().Errorf("Unable to open init file: %s", filename)
		return
	}
	defer f.Close()
	out := &display{quiet: true}
	if err := intp.Run(f, out); err != nil {
		tracer().Errorf("Error while reading init file: " + err.Error())
	}
	tracer().Infof("Loaded %s, %d errors", filename, out.errors)
}
