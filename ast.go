package tnl

import "regexp"

// The AST is a closed hierarchy: one struct per node kind, grouped by the
// narrow interfaces the grammar distinguishes. Nodes are constructed by the
// parser and never mutated afterwards; the VM treats them as read-only.

// Node is implemented by every AST node.
type Node interface {
	node()
}

// Definition is a top-level entry of a Module: a Transform or a Test.
type Definition interface {
	Node
	definitionNode()
}

// RuleBlock is one block inside a Transform: aliases, headers, or values.
type RuleBlock interface {
	Node
	ruleBlockNode()
}

// Header is what a header rule or column selector matches columns by:
// a Name, a String, or a Pattern.
type Header interface {
	Node
	headerNode()
}

// Operation is a single step of a pipeline.
type Operation interface {
	Node
	operationNode()
}

// Expr is an expression operation: a BinaryOp, UnaryOp, or RValue.
type Expr interface {
	Operation
	exprNode()
}

// RValue is an operand: a Name, a Literal, or a ColumnSelector.
type RValue interface {
	Expr
	rvalueNode()
}

// Literal is a String, Number, Pattern, or Boolean constant.
type Literal interface {
	RValue
	literalNode()
}

// Module is the root node: an ordered sequence of definitions.
type Module struct {
	Definitions []Definition
}

// Transform is a named group of rule blocks applied to a table.
type Transform struct {
	Name       *Name
	RuleBlocks []RuleBlock
}

// Test is reserved syntax; it carries no semantics yet.
type Test struct{}

// AliasBlock is reserved syntax; it carries no semantics yet.
type AliasBlock struct {
	AliasRules []*AliasRule
}

type HeaderBlock struct {
	HeaderRules []*HeaderRule
}

type ValueBlock struct {
	ValueRules []*ValueRule
}

// AliasRule is reserved syntax; it carries no semantics yet.
type AliasRule struct {
	Name  *Name
	Value Literal
}

// HeaderRule rewrites the names of the columns its header matches.
type HeaderRule struct {
	Header   Header
	Pipeline *Pipeline
}

// ValueRule rewrites the contents of the columns its rvalue selects.
type ValueRule struct {
	RValue   RValue
	Pipeline *Pipeline
}

// Pipeline is an ordered sequence of operations; each operation's output
// becomes the next one's input.
type Pipeline struct {
	Operations []Operation
}

// BinaryOp is reserved in pipelines; the VM rejects it.
type BinaryOp struct {
	Op    string // one of * / % + -
	Left  Expr
	Right Expr
}

// UnaryOp is reserved in pipelines; the VM rejects it.
type UnaryOp struct {
	Op   string // one of - !
	Expr Expr
}

// Conditional is reserved in pipelines; the VM rejects it.
type Conditional struct {
	Test          Expr
	TruePipeline  *Pipeline
	FalsePipeline *Pipeline // nil when there is no else branch
}

// Map is an invocation of a named built-in primitive with literal
// arguments. The parser guarantees len(Args) equals the primitive's
// declared argument count.
type Map struct {
	Name *Name
	Args []RValue
}

// ColumnSelector denotes the column currently named by its header.
type ColumnSelector struct {
	Header Header
}

type Name struct {
	Data string
}

type String struct {
	Data string
}

type Number struct {
	Data int
}

type Boolean struct {
	Data bool
}

// Pattern is a slash-delimited regex literal. It keeps its source text and
// lazily produces the compiled form; column matching is anchored at the
// start (Python re.match semantics).
type Pattern struct {
	Data string

	compiled *regexp.Regexp
}

// Compile returns the compiled pattern, compiling it on first use. The
// compiled form is memoized for the life of the node, which is safe
// because execution is single-threaded.
func (p *Pattern) Compile() (*regexp.Regexp, error) {
	if p.compiled != nil {
		return p.compiled, nil
	}
	re, err := regexp.Compile(`\A(?:` + p.Data + `)`)
	if err != nil {
		return nil, err
	}
	p.compiled = re
	return re, nil
}

func (*Module) node()         {}
func (*Transform) node()      {}
func (*Test) node()           {}
func (*AliasBlock) node()     {}
func (*HeaderBlock) node()    {}
func (*ValueBlock) node()     {}
func (*AliasRule) node()      {}
func (*HeaderRule) node()     {}
func (*ValueRule) node()      {}
func (*Pipeline) node()       {}
func (*BinaryOp) node()       {}
func (*UnaryOp) node()        {}
func (*Conditional) node()    {}
func (*Map) node()            {}
func (*ColumnSelector) node() {}
func (*Name) node()           {}
func (*String) node()         {}
func (*Number) node()         {}
func (*Boolean) node()        {}
func (*Pattern) node()        {}

func (*Transform) definitionNode() {}
func (*Test) definitionNode()      {}

func (*AliasBlock) ruleBlockNode()  {}
func (*HeaderBlock) ruleBlockNode() {}
func (*ValueBlock) ruleBlockNode()  {}

func (*Name) headerNode()    {}
func (*String) headerNode()  {}
func (*Pattern) headerNode() {}

func (*BinaryOp) operationNode()       {}
func (*UnaryOp) operationNode()        {}
func (*Conditional) operationNode()    {}
func (*Map) operationNode()            {}
func (*ColumnSelector) operationNode() {}
func (*Name) operationNode()           {}
func (*String) operationNode()         {}
func (*Number) operationNode()         {}
func (*Boolean) operationNode()        {}
func (*Pattern) operationNode()        {}

func (*BinaryOp) exprNode()       {}
func (*UnaryOp) exprNode()        {}
func (*ColumnSelector) exprNode() {}
func (*Name) exprNode()           {}
func (*String) exprNode()         {}
func (*Number) exprNode()         {}
func (*Boolean) exprNode()        {}
func (*Pattern) exprNode()        {}

func (*ColumnSelector) rvalueNode() {}
func (*Name) rvalueNode()           {}
func (*String) rvalueNode()         {}
func (*Number) rvalueNode()         {}
func (*Boolean) rvalueNode()        {}
func (*Pattern) rvalueNode()        {}

func (*String) literalNode()  {}
func (*Number) literalNode()  {}
func (*Boolean) literalNode() {}
func (*Pattern) literalNode() {}

// Walk traverses the tree rooted at node in depth-first pre-order, calling
// visit for each node. If visit returns false the node's children are
// skipped. A nil interface value is not visited, nor is the absent else
// branch of a Conditional; other child pointers are expected to be
// non-nil, as the parser always sets them.
func Walk(node Node, visit func(Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	switch n := node.(type) {
	case *Module:
		for _, d := range n.Definitions {
			Walk(d, visit)
		}
	case *Transform:
		Walk(n.Name, visit)
		for _, b := range n.RuleBlocks {
			Walk(b, visit)
		}
	case *AliasBlock:
		for _, r := range n.AliasRules {
			Walk(r, visit)
		}
	case *HeaderBlock:
		for _, r := range n.HeaderRules {
			Walk(r, visit)
		}
	case *ValueBlock:
		for _, r := range n.ValueRules {
			Walk(r, visit)
		}
	case *AliasRule:
		Walk(n.Name, visit)
		Walk(n.Value, visit)
	case *HeaderRule:
		Walk(n.Header, visit)
		Walk(n.Pipeline, visit)
	case *ValueRule:
		Walk(n.RValue, visit)
		Walk(n.Pipeline, visit)
	case *Pipeline:
		for _, op := range n.Operations {
			Walk(op, visit)
		}
	case *BinaryOp:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *UnaryOp:
		Walk(n.Expr, visit)
	case *Conditional:
		Walk(n.Test, visit)
		Walk(n.TruePipeline, visit)
		if n.FalsePipeline != nil {
			Walk(n.FalsePipeline, visit)
		}
	case *Map:
		Walk(n.Name, visit)
		for _, arg := range n.Args {
			Walk(arg, visit)
		}
	case *ColumnSelector:
		Walk(n.Header, visit)
	}
}
