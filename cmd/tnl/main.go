// Command tnl runs a TNL program against a CSV file.
//
// Usage:
//
//	tnl [flags] source_file data_file
//
// The stage flags are mutually exclusive: --print-tokens, --print-ast,
// --print-code, --check, --interpret, and --compile (the default stage,
// reserved for a native back-end that does not exist yet).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/juju/errors"

	"github.com/thomasjohns/tnl"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := flag.NewFlagSet("tnl", flag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "TNL - Table Normalization Language.")
		fmt.Fprintln(flags.Output(), "usage: tnl [flags] source_file data_file")
		flags.PrintDefaults()
	}

	printTokens := flags.Bool("print-tokens", false, "print the token stream and stop")
	printAST := flags.Bool("print-ast", false, "print the parsed AST and stop")
	printCode := flags.Bool("print-code", false, "pretty-print the parsed program and stop")
	check := flags.Bool("check", false, "run static analysis and print diagnostics")
	interpret := flags.Bool("interpret", false, "transform the data file and print the result")
	target := flags.String("compile", "pandas", "compilation target (not implemented)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return 1
	}

	selected := 0
	for _, on := range []bool{*printTokens, *printAST, *printCode, *check, *interpret} {
		if on {
			selected++
		}
	}
	compiling := selected == 0
	if selected > 1 {
		fmt.Fprintln(os.Stderr, "The stage flags are mutually exclusive.")
		return 1
	}

	if flags.NArg() != 2 {
		flags.Usage()
		return 1
	}
	sourceFile := flags.Arg(0)
	dataFile := flags.Arg(1)

	src, err := os.ReadFile(sourceFile)
	if err != nil {
		fmt.Printf("Can't find source_file %s.\n", sourceFile)
		return 1
	}

	tokens, err := tnl.Lex(sourceFile, string(src))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *printTokens {
		for _, token := range tokens {
			fmt.Println(token)
		}
		return 0
	}

	module, err := tnl.Parse(sourceFile, tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *printAST {
		tnl.PrintModuleAST(module)
		return 0
	}

	if *printCode {
		tnl.PrintModuleCode(module)
		return 0
	}

	if *check {
		for _, diag := range tnl.Analyze(module) {
			fmt.Println(diag)
		}
		return 0
	}

	dataReader, err := os.Open(dataFile)
	if err != nil {
		fmt.Printf("Can't find data_file %s.\n", dataFile)
		return 1
	}
	defer dataReader.Close()

	data := dataframe.ReadCSV(dataReader)
	if data.Err != nil {
		fmt.Fprintln(os.Stderr, errors.Annotatef(data.Err, "reading %s", dataFile))
		return 1
	}

	if *interpret {
		transformed, err := tnl.Apply(module, data)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := transformed.WriteCSV(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, errors.Annotate(err, "writing csv"))
			return 1
		}
		return 0
	}

	if compiling {
		fmt.Println(*target)
		fmt.Println("`compile` does nothing right now.")
	}

	return 0
}
