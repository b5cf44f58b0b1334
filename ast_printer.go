package tnl

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// PrintModuleAST dumps module's structure on stdout. The format is a
// constructor-like rendering of the tree, two spaces per level; it is for
// --print-ast and debugging, and is not meant to be parsed back.
func PrintModuleAST(module *Module) {
	FprintModuleAST(os.Stdout, module)
}

// FprintModuleAST dumps module's structure to w.
func FprintModuleAST(w io.Writer, module *Module) {
	p := &astPrinter{w: w, indentSpaces: 2}
	p.printModule(module)
}

// SprintModuleAST returns the structural dump of module.
func SprintModuleAST(module *Module) string {
	var b strings.Builder
	FprintModuleAST(&b, module)
	return b.String()
}

type astPrinter struct {
	w            io.Writer
	indentSpaces int
	cur          int
}

func (p *astPrinter) indent() {
	p.cur += p.indentSpaces
}

func (p *astPrinter) dedent() {
	p.cur -= p.indentSpaces
}

func (p *astPrinter) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *astPrinter) iprintf(format string, args ...any) {
	fmt.Fprint(p.w, strings.Repeat(" ", p.cur))
	fmt.Fprintf(p.w, format, args...)
}

func (p *astPrinter) printModule(module *Module) {
	p.iprintf("Module(\n")
	p.indent()
	for _, definition := range module.Definitions {
		switch d := definition.(type) {
		case *Transform:
			p.printTransform(d)
			p.printf(",\n")
		case *Test:
			p.iprintf("Test(),\n")
		}
	}
	p.dedent()
	p.iprintf(")\n")
}

func (p *astPrinter) printTransform(transform *Transform) {
	p.iprintf("Transform(\n")
	p.indent()
	p.iprintf("name=")
	p.printValue(transform.Name)
	p.printf(",\n")
	if len(transform.RuleBlocks) > 0 {
		p.iprintf("rule_blocks=[\n")
		p.indent()
		for _, ruleBlock := range transform.RuleBlocks {
			p.printRuleBlock(ruleBlock)
		}
		p.dedent()
		p.iprintf("],\n")
	} else {
		p.iprintf("rule_blocks=[],\n")
	}
	p.dedent()
	p.iprintf(")")
}

func (p *astPrinter) printRuleBlock(ruleBlock RuleBlock) {
	switch b := ruleBlock.(type) {
	case *HeaderBlock:
		p.iprintf("HeaderBlock(\n")
		p.indent()
		if len(b.HeaderRules) > 0 {
			p.iprintf("header_rules=[\n")
			p.indent()
			for _, rule := range b.HeaderRules {
				p.printRule("HeaderRule", "header", rule.Header, rule.Pipeline)
			}
			p.dedent()
			p.iprintf("],\n")
		} else {
			p.iprintf("header_rules=[],\n")
		}
		p.dedent()
		p.iprintf("),\n")
	case *ValueBlock:
		p.iprintf("ValueBlock(\n")
		p.indent()
		if len(b.ValueRules) > 0 {
			p.iprintf("value_rules=[\n")
			p.indent()
			for _, rule := range b.ValueRules {
				p.printRule("ValueRule", "rvalue", rule.RValue, rule.Pipeline)
			}
			p.dedent()
			p.iprintf("],\n")
		} else {
			p.iprintf("value_rules=[],\n")
		}
		p.dedent()
		p.iprintf("),\n")
	case *AliasBlock:
		p.iprintf("AliasBlock(),\n")
	}
}

func (p *astPrinter) printRule(kind string, field string, lhs Node, pipeline *Pipeline) {
	p.iprintf("%s(\n", kind)
	p.indent()
	p.iprintf("%s=", field)
	p.printValue(lhs)
	p.printf(",\n")
	p.iprintf("pipeline=")
	p.printPipeline(pipeline)
	p.printf(",\n")
	p.dedent()
	p.iprintf("),\n")
}

func (p *astPrinter) printPipeline(pipeline *Pipeline) {
	p.printf("Pipeline(\n")
	p.indent()
	if len(pipeline.Operations) > 0 {
		p.iprintf("operations=[\n")
		p.indent()
		for _, operation := range pipeline.Operations {
			p.iprintf("")
			p.printOperation(operation)
			p.printf(",\n")
		}
		p.dedent()
		p.iprintf("],\n")
	} else {
		p.iprintf("operations=[],\n")
	}
	p.dedent()
	p.iprintf(")")
}

func (p *astPrinter) printOperation(operation Operation) {
	switch op := operation.(type) {
	case *Map:
		p.printf("Map(\n")
		p.indent()
		p.iprintf("name=")
		p.printValue(op.Name)
		p.printf(",\n")
		if len(op.Args) > 0 {
			p.iprintf("args=[\n")
			p.indent()
			for _, arg := range op.Args {
				p.iprintf("")
				p.printValue(arg)
				p.printf(",\n")
			}
			p.dedent()
			p.iprintf("],\n")
		} else {
			p.iprintf("args=[],\n")
		}
		p.dedent()
		p.iprintf(")")
	case *Conditional:
		p.printf("Conditional(\n")
		p.indent()
		p.iprintf("test=")
		p.printValue(op.Test)
		p.printf(",\n")
		p.iprintf("true_pipeline=")
		p.printPipeline(op.TruePipeline)
		p.printf(",\n")
		p.iprintf("false_pipeline=")
		if op.FalsePipeline != nil {
			p.printPipeline(op.FalsePipeline)
		} else {
			p.printf("None")
		}
		p.printf(",\n")
		p.dedent()
		p.iprintf(")")
	default:
		p.printValue(operation)
	}
}

func (p *astPrinter) printValue(node Node) {
	switch n := node.(type) {
	case *BinaryOp:
		p.printf("BinaryOp(\n")
		p.indent()
		p.iprintf("left=")
		p.printValue(n.Left)
		p.printf(",\n")
		p.iprintf("op=%s,\n", n.Op)
		p.iprintf("right=")
		p.printValue(n.Right)
		p.printf(",\n")
		p.dedent()
		p.iprintf(")")
	case *UnaryOp:
		p.printf("UnaryOp(\n")
		p.indent()
		p.iprintf("op=%s,\n", n.Op)
		p.iprintf("expr=")
		p.printValue(n.Expr)
		p.printf(",\n")
		p.dedent()
		p.iprintf(")")
	case *ColumnSelector:
		p.printf("ColumnSelector(header=")
		p.printValue(n.Header)
		p.printf(")")
	case *Name:
		p.printf("Name(data='%s')", n.Data)
	case *String:
		p.printf("String(data='%s')", n.Data)
	case *Number:
		p.printf("Number(data='%d')", n.Data)
	case *Pattern:
		p.printf("Pattern(data='%s')", n.Data)
	case *Boolean:
		p.printf("Boolean(data=%s)", pythonBool(n.Data))
	}
}
