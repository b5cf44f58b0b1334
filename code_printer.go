package tnl

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// defaultIndentSpaces is the canonical indent of printed TNL source.
const defaultIndentSpaces = 4

// PrintModuleCode pretty-prints module as canonical TNL source on stdout.
func PrintModuleCode(module *Module) {
	FprintModuleCode(os.Stdout, module)
}

// FprintModuleCode pretty-prints module as canonical TNL source. The
// output parses back to a structurally equal Module: rule bodies with a
// single operation print inline after the arrow, longer ones as a braced
// block with one piped operation per line.
func FprintModuleCode(w io.Writer, module *Module) {
	p := &codePrinter{w: w, indentSpaces: defaultIndentSpaces}
	p.printModule(module)
}

// SprintModuleCode returns the canonical source text of module.
func SprintModuleCode(module *Module) string {
	var b strings.Builder
	FprintModuleCode(&b, module)
	return b.String()
}

type codePrinter struct {
	w            io.Writer
	indentSpaces int
	cur          int
}

func (p *codePrinter) indent() {
	p.cur += p.indentSpaces
}

func (p *codePrinter) dedent() {
	p.cur -= p.indentSpaces
}

func (p *codePrinter) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// iprintf prints at the current indent.
func (p *codePrinter) iprintf(format string, args ...any) {
	fmt.Fprint(p.w, strings.Repeat(" ", p.cur))
	fmt.Fprintf(p.w, format, args...)
}

func (p *codePrinter) printModule(module *Module) {
	for _, definition := range module.Definitions {
		switch d := definition.(type) {
		case *Transform:
			p.printTransform(d)
		case *Test:
			// reserved; nothing to print
		}
	}
}

func (p *codePrinter) printTransform(transform *Transform) {
	p.iprintf("transform %s {\n", transform.Name.Data)
	p.indent()
	for _, ruleBlock := range transform.RuleBlocks {
		p.printRuleBlock(ruleBlock)
	}
	p.dedent()
	p.iprintf("}\n")
}

func (p *codePrinter) printRuleBlock(ruleBlock RuleBlock) {
	switch b := ruleBlock.(type) {
	case *HeaderBlock:
		p.iprintf("headers {\n")
		p.indent()
		for _, rule := range b.HeaderRules {
			p.printRule(rule.Header, rule.Pipeline)
		}
		p.dedent()
		p.iprintf("}\n")
	case *ValueBlock:
		p.iprintf("values {\n")
		p.indent()
		for _, rule := range b.ValueRules {
			p.printRule(rule.RValue, rule.Pipeline)
		}
		p.dedent()
		p.iprintf("}\n")
	case *AliasBlock:
		// reserved; nothing to print
	}
}

// printRule prints one header or value rule; both share the same layout,
// differing only in the left-hand side.
func (p *codePrinter) printRule(lhs Node, pipeline *Pipeline) {
	p.iprintf("")
	p.printOperand(lhs)
	if len(pipeline.Operations) > 1 {
		p.printf(" -> {\n")
		p.indent()
		p.printPipelineBlock(pipeline)
		p.dedent()
		p.iprintf("}\n")
	} else {
		p.printf(" -> ")
		p.printPipelineInline(pipeline)
		p.printf("\n")
	}
}

func (p *codePrinter) printPipelineBlock(pipeline *Pipeline) {
	for _, operation := range pipeline.Operations {
		p.iprintf("| ")
		p.printOperation(operation)
		p.printf("\n")
	}
}

func (p *codePrinter) printPipelineInline(pipeline *Pipeline) {
	if len(pipeline.Operations) == 0 {
		p.printf("{}")
		return
	}
	p.printOperation(pipeline.Operations[0])
}

func (p *codePrinter) printOperation(operation Operation) {
	switch op := operation.(type) {
	case *Map:
		p.printf("%s", op.Name.Data)
		for _, arg := range op.Args {
			p.printf(" ")
			p.printOperand(arg)
		}
	case *Conditional:
		p.printConditional(op)
	default:
		p.printOperand(operation)
	}
}

func (p *codePrinter) printConditional(conditional *Conditional) {
	p.printf("if ")
	p.printOperand(conditional.Test)
	p.printf(" {\n")
	p.indent()
	p.printPipelineBlock(conditional.TruePipeline)
	p.dedent()
	p.iprintf("}")
	if conditional.FalsePipeline != nil {
		p.printf(" else {\n")
		p.indent()
		p.printPipelineBlock(conditional.FalsePipeline)
		p.dedent()
		p.iprintf("}")
	}
}

// stringEscaper re-escapes string data so the lexer reads it back
// unchanged: a backslash escapes the following character.
var stringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// printOperand prints rvalues, headers, and reserved expression forms.
func (p *codePrinter) printOperand(node Node) {
	switch n := node.(type) {
	case *BinaryOp:
		p.printf("(")
		p.printOperand(n.Left)
		p.printf(" %s ", n.Op)
		p.printOperand(n.Right)
		p.printf(")")
	case *UnaryOp:
		p.printf("(%s ", n.Op)
		p.printOperand(n.Expr)
		p.printf(")")
	case *ColumnSelector:
		p.printf("[")
		p.printOperand(n.Header)
		p.printf("]")
	case *Name:
		p.printf("%s", n.Data)
	case *String:
		p.printf("'%s'", stringEscaper.Replace(n.Data))
	case *Number:
		p.printf("%d", n.Data)
	case *Pattern:
		p.printf("/%s/", n.Data)
	case *Boolean:
		p.printf("%s", pythonBool(n.Data))
	}
}
