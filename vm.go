package tnl

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// Apply runs every definition of module against data and returns the
// transformed frame. The frame is logically owned by the VM for the
// duration of the call; callers must not mutate it concurrently.
func Apply(module *Module, data dataframe.DataFrame) (dataframe.DataFrame, error) {
	vm := NewVM(data)
	if err := vm.Execute(module); err != nil {
		return dataframe.DataFrame{}, err
	}
	return vm.Data(), nil
}

// VM interprets a Module against a data frame. Execution is strictly
// sequential: rules see the side effects of every prior rule, and column
// renames land first-come-first-served. The only mutable state is the
// current frame, replaced rule by rule.
type VM struct {
	data dataframe.DataFrame
}

func NewVM(data dataframe.DataFrame) *VM {
	return &VM{data: data}
}

// Data returns the current frame.
func (vm *VM) Data() dataframe.DataFrame {
	return vm.data
}

func (vm *VM) errorf(format string, args ...any) error {
	return &Error{
		Sender:    "vm",
		OrigError: fmt.Errorf(format, args...),
	}
}

// wrap turns an underlying failure into a VM error, leaving errors that
// already carry their context untouched.
func (vm *VM) wrap(err error) error {
	if _, alreadyWrapped := err.(*Error); alreadyWrapped {
		return err
	}
	return &Error{
		Sender:    "vm",
		OrigError: err,
	}
}

// Column returns a copy of the named column. Part of FrameContext.
func (vm *VM) Column(name string) (series.Series, error) {
	if !lo.Contains(vm.data.Names(), name) {
		return series.Series{}, vm.errorf("unknown column '%s'", name)
	}
	col := vm.data.Col(name)
	if col.Err != nil {
		return series.Series{}, vm.wrap(errors.Annotatef(col.Err, "reading column '%s'", name))
	}
	return col, nil
}

// NumRows returns the frame's row count. Part of FrameContext.
func (vm *VM) NumRows() int {
	return vm.data.Nrow()
}

// Execute processes each definition in order against the current frame.
func (vm *VM) Execute(module *Module) error {
	for _, definition := range module.Definitions {
		switch d := definition.(type) {
		case *Transform:
			if err := vm.execTransform(d); err != nil {
				return err
			}
		case *Test:
			return vm.errorf("test definitions are not implemented")
		}
	}
	return nil
}

func (vm *VM) execTransform(transform *Transform) error {
	for _, ruleBlock := range transform.RuleBlocks {
		switch b := ruleBlock.(type) {
		case *HeaderBlock:
			for _, rule := range b.HeaderRules {
				if err := vm.execHeaderRule(rule); err != nil {
					return err
				}
			}
		case *ValueBlock:
			for _, rule := range b.ValueRules {
				if err := vm.execValueRule(rule); err != nil {
					return err
				}
			}
		case *AliasBlock:
			return vm.errorf("alias blocks are not implemented")
		}
	}
	return nil
}

// headerTargets resolves a header to the current column names it selects.
// A string header selects itself when present and nothing otherwise; a
// pattern header selects every column it matches anchored at the start.
// The selection snapshots the header list before any rename applies.
func (vm *VM) headerTargets(header Header) ([]string, error) {
	names := vm.data.Names()
	switch h := header.(type) {
	case *String:
		if lo.Contains(names, h.Data) {
			return []string{h.Data}, nil
		}
		return nil, nil
	case *Pattern:
		re, err := h.Compile()
		if err != nil {
			return nil, vm.errorf("Invalid regex pattern /%s/", h.Data)
		}
		var matched []string
		for _, name := range names {
			if re.MatchString(name) {
				matched = append(matched, name)
			}
		}
		return matched, nil
	case *Name:
		return nil, vm.errorf("name headers are not yet supported")
	default:
		return nil, vm.errorf("unsupported header %T", header)
	}
}

func (vm *VM) execHeaderRule(rule *HeaderRule) error {
	targets, err := vm.headerTargets(rule.Header)
	if err != nil {
		return err
	}
	for _, from := range targets {
		to, err := vm.execStringPipeline(rule.Pipeline, from)
		if err != nil {
			return err
		}
		renamed := vm.data.Rename(to, from)
		if renamed.Err != nil {
			return vm.wrap(errors.Annotatef(renamed.Err, "renaming column '%s'", from))
		}
		vm.data = renamed
	}
	return nil
}

func (vm *VM) execValueRule(rule *ValueRule) error {
	selector, ok := rule.RValue.(*ColumnSelector)
	if !ok {
		return vm.errorf("value rules on %T rvalues are not yet supported", rule.RValue)
	}
	targets, err := vm.headerTargets(selector.Header)
	if err != nil {
		return err
	}
	for _, name := range targets {
		before, err := vm.Column(name)
		if err != nil {
			return err
		}
		after, err := vm.execValuesPipeline(rule.Pipeline, before)
		if err != nil {
			return err
		}
		after.Name = name
		mutated := vm.data.Mutate(after)
		if mutated.Err != nil {
			return vm.wrap(errors.Annotatef(mutated.Err, "writing column '%s'", name))
		}
		vm.data = mutated
	}
	return nil
}

// execStringPipeline threads a single string (a column name) through the
// pipeline. Literal strings and numbers are constant-assignment steps;
// maps apply their string capability.
func (vm *VM) execStringPipeline(pipeline *Pipeline, s string) (string, error) {
	for _, operation := range pipeline.Operations {
		switch op := operation.(type) {
		case *String:
			s = op.Data
		case *Number:
			s = cast.ToString(op.Data)
		case *Map:
			impl, ok := LookupMap(op.Name.Data)
			if !ok {
				return "", vm.errorf("Unrecognized map '%s'.", op.Name.Data)
			}
			if impl.MapString == nil {
				return "", vm.errorf("map '%s' cannot be used in a header pipeline", op.Name.Data)
			}
			mapped, err := impl.MapString(s, op.Args)
			if err != nil {
				return "", vm.wrap(err)
			}
			s = mapped
		default:
			return "", vm.errorf("%T operations are not supported in header pipelines", operation)
		}
	}
	return s, nil
}

// execValuesPipeline threads a column through the pipeline. Literals
// become constant columns spanning the frame; column selectors replace
// the working column with a copy of the referenced one; maps apply their
// values capability.
func (vm *VM) execValuesPipeline(pipeline *Pipeline, s series.Series) (series.Series, error) {
	n := vm.data.Nrow()
	for _, operation := range pipeline.Operations {
		switch op := operation.(type) {
		case *ColumnSelector:
			header, ok := op.Header.(*String)
			if !ok {
				return series.Series{}, vm.errorf(
					"column selectors in pipelines require a string header")
			}
			col, err := vm.Column(header.Data)
			if err != nil {
				return series.Series{}, err
			}
			col.Name = s.Name
			s = col
		case *String:
			s = series.New(lo.Times(n, func(_ int) string { return op.Data }), series.String, s.Name)
		case *Number:
			s = series.New(lo.Times(n, func(_ int) int { return op.Data }), series.Int, s.Name)
		case *Boolean:
			s = series.New(lo.Times(n, func(_ int) string { return pythonBool(op.Data) }), series.String, s.Name)
		case *Map:
			impl, ok := LookupMap(op.Name.Data)
			if !ok {
				return series.Series{}, vm.errorf("Unrecognized map '%s'.", op.Name.Data)
			}
			if impl.MapValues == nil {
				return series.Series{}, vm.errorf(
					"map '%s' cannot be used in a values pipeline", op.Name.Data)
			}
			mapped, err := impl.MapValues(vm, s, op.Args)
			if err != nil {
				return series.Series{}, vm.wrap(err)
			}
			s = mapped
		default:
			return series.Series{}, vm.errorf(
				"%T operations are not implemented in values pipelines", operation)
		}
	}
	return s, nil
}

// pythonBool renders a boolean the way the frame's CSV codec is expected
// to: True or False.
func pythonBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
