package tnl

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-gota/gota/series"
	"github.com/samber/lo"
)

func init() {
	RegisterMap(&MapImpl{Name: "add", NumArgs: 1, MapValues: mapAddValues})
	RegisterMap(&MapImpl{Name: "mult", NumArgs: 1, MapValues: mapMultValues})
	RegisterMap(&MapImpl{Name: "power", NumArgs: 1, MapValues: mapPowerValues})
	RegisterMap(&MapImpl{Name: "divide", NumArgs: 1, MapValues: mapDivideValues})
	RegisterMap(&MapImpl{Name: "auto_inc", NumArgs: 0, MapValues: mapAutoIncValues})

	RegisterMap(&MapImpl{Name: "replace", NumArgs: 2, MapString: mapReplaceString, MapValues: mapReplaceValues})
	RegisterMap(&MapImpl{Name: "replace_last", NumArgs: 2, MapString: mapReplaceLastString, MapValues: mapReplaceLastValues})
	RegisterMap(&MapImpl{Name: "trim", NumArgs: 0, MapString: mapTrimString, MapValues: mapTrimValues})
	RegisterMap(&MapImpl{Name: "slice", NumArgs: 2, MapString: mapSliceString, MapValues: mapSliceValues})
	RegisterMap(&MapImpl{Name: "title", NumArgs: 0, MapString: mapTitleString, MapValues: mapTitleValues})
	RegisterMap(&MapImpl{Name: "upper", NumArgs: 0, MapString: mapUpperString, MapValues: mapUpperValues})
	RegisterMap(&MapImpl{Name: "lower", NumArgs: 0, MapString: mapLowerString, MapValues: mapLowerValues})
	RegisterMap(&MapImpl{Name: "remove_prefix", NumArgs: 1, MapString: mapRemovePrefixString, MapValues: mapRemovePrefixValues})
	RegisterMap(&MapImpl{Name: "remove_suffix", NumArgs: 1, MapString: mapRemoveSuffixString, MapValues: mapRemoveSuffixValues})
	RegisterMap(&MapImpl{Name: "concat", NumArgs: 3, MapString: mapConcatString, MapValues: mapConcatValues})
	RegisterMap(&MapImpl{Name: "format", NumArgs: 1, MapString: mapFormatString, MapValues: mapFormatValues})
}

// numberArg extracts argument i as an integer literal.
func numberArg(mapName string, args []RValue, i int) (int, error) {
	n, ok := args[i].(*Number)
	if !ok {
		return 0, fmt.Errorf("map '%s' expects a number for argument %d", mapName, i+1)
	}
	return n.Data, nil
}

// stringArg extracts argument i as a string literal.
func stringArg(mapName string, args []RValue, i int) (string, error) {
	s, ok := args[i].(*String)
	if !ok {
		return "", fmt.Errorf("map '%s' expects a string for argument %d", mapName, i+1)
	}
	return s.Data, nil
}

// intCells converts a column to integers, failing with the underlying
// conversion error when the column is not numeric.
func intCells(mapName string, s series.Series) ([]int, error) {
	cells, err := s.Int()
	if err != nil {
		return nil, fmt.Errorf("cannot apply map '%s' to %s column '%s': %w",
			mapName, s.Type(), s.Name, err)
	}
	return cells, nil
}

// stringCells returns a column's cells, requiring a string column. String
// maps on other column types fail the way a .str accessor would.
func stringCells(mapName string, s series.Series) ([]string, error) {
	if s.Type() != series.String {
		return nil, fmt.Errorf("cannot apply map '%s' to %s column '%s'",
			mapName, s.Type(), s.Name)
	}
	return s.Records(), nil
}

// mapIntCells applies f element-wise to a numeric column.
func mapIntCells(mapName string, s series.Series, f func(int) (int, error)) (series.Series, error) {
	cells, err := intCells(mapName, s)
	if err != nil {
		return series.Series{}, err
	}
	out := make([]int, len(cells))
	for i, cell := range cells {
		if out[i], err = f(cell); err != nil {
			return series.Series{}, err
		}
	}
	return series.New(out, series.Int, s.Name), nil
}

// mapStringCells applies f element-wise to a string column.
func mapStringCells(mapName string, s series.Series, f func(string) string) (series.Series, error) {
	cells, err := stringCells(mapName, s)
	if err != nil {
		return series.Series{}, err
	}
	out := lo.Map(cells, func(cell string, _ int) string { return f(cell) })
	return series.New(out, series.String, s.Name), nil
}

func mapAddValues(_ FrameContext, s series.Series, args []RValue) (series.Series, error) {
	n, err := numberArg("add", args, 0)
	if err != nil {
		return series.Series{}, err
	}
	return mapIntCells("add", s, func(v int) (int, error) { return v + n, nil })
}

func mapMultValues(_ FrameContext, s series.Series, args []RValue) (series.Series, error) {
	n, err := numberArg("mult", args, 0)
	if err != nil {
		return series.Series{}, err
	}
	return mapIntCells("mult", s, func(v int) (int, error) { return v * n, nil })
}

func mapPowerValues(_ FrameContext, s series.Series, args []RValue) (series.Series, error) {
	n, err := numberArg("power", args, 0)
	if err != nil {
		return series.Series{}, err
	}
	return mapIntCells("power", s, func(v int) (int, error) { return intPow(v, n), nil })
}

func mapDivideValues(_ FrameContext, s series.Series, args []RValue) (series.Series, error) {
	n, err := numberArg("divide", args, 0)
	if err != nil {
		return series.Series{}, err
	}
	return mapIntCells("divide", s, func(v int) (int, error) { return floorDiv(v, n) })
}

// mapAutoIncValues replaces the column with 1, 2, ... row count.
func mapAutoIncValues(frame FrameContext, s series.Series, _ []RValue) (series.Series, error) {
	return series.New(lo.RangeFrom(1, frame.NumRows()), series.Int, s.Name), nil
}

func mapReplaceString(s string, args []RValue) (string, error) {
	from, err := stringArg("replace", args, 0)
	if err != nil {
		return "", err
	}
	to, err := stringArg("replace", args, 1)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(s, from, to), nil
}

func mapReplaceValues(_ FrameContext, s series.Series, args []RValue) (series.Series, error) {
	from, err := stringArg("replace", args, 0)
	if err != nil {
		return series.Series{}, err
	}
	to, err := stringArg("replace", args, 1)
	if err != nil {
		return series.Series{}, err
	}
	return mapStringCells("replace", s, func(cell string) string {
		return strings.ReplaceAll(cell, from, to)
	})
}

func mapReplaceLastString(s string, args []RValue) (string, error) {
	from, err := stringArg("replace_last", args, 0)
	if err != nil {
		return "", err
	}
	to, err := stringArg("replace_last", args, 1)
	if err != nil {
		return "", err
	}
	return replaceLast(s, from, to), nil
}

func mapReplaceLastValues(_ FrameContext, s series.Series, args []RValue) (series.Series, error) {
	from, err := stringArg("replace_last", args, 0)
	if err != nil {
		return series.Series{}, err
	}
	to, err := stringArg("replace_last", args, 1)
	if err != nil {
		return series.Series{}, err
	}
	return mapStringCells("replace_last", s, func(cell string) string {
		return replaceLast(cell, from, to)
	})
}

func mapTrimString(s string, _ []RValue) (string, error) {
	return strings.TrimSpace(s), nil
}

func mapTrimValues(_ FrameContext, s series.Series, _ []RValue) (series.Series, error) {
	return mapStringCells("trim", s, strings.TrimSpace)
}

func mapSliceString(s string, args []RValue) (string, error) {
	start, err := numberArg("slice", args, 0)
	if err != nil {
		return "", err
	}
	stop, err := numberArg("slice", args, 1)
	if err != nil {
		return "", err
	}
	return pySlice(s, start, stop), nil
}

func mapSliceValues(_ FrameContext, s series.Series, args []RValue) (series.Series, error) {
	start, err := numberArg("slice", args, 0)
	if err != nil {
		return series.Series{}, err
	}
	stop, err := numberArg("slice", args, 1)
	if err != nil {
		return series.Series{}, err
	}
	return mapStringCells("slice", s, func(cell string) string {
		return pySlice(cell, start, stop)
	})
}

func mapTitleString(s string, _ []RValue) (string, error) {
	return titleCase(s), nil
}

func mapTitleValues(_ FrameContext, s series.Series, _ []RValue) (series.Series, error) {
	return mapStringCells("title", s, titleCase)
}

func mapUpperString(s string, _ []RValue) (string, error) {
	return strings.ToUpper(s), nil
}

func mapUpperValues(_ FrameContext, s series.Series, _ []RValue) (series.Series, error) {
	return mapStringCells("upper", s, strings.ToUpper)
}

func mapLowerString(s string, _ []RValue) (string, error) {
	return strings.ToLower(s), nil
}

func mapLowerValues(_ FrameContext, s series.Series, _ []RValue) (series.Series, error) {
	return mapStringCells("lower", s, strings.ToLower)
}

func mapRemovePrefixString(s string, args []RValue) (string, error) {
	prefix, err := stringArg("remove_prefix", args, 0)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(s, prefix), nil
}

func mapRemovePrefixValues(_ FrameContext, s series.Series, args []RValue) (series.Series, error) {
	prefix, err := stringArg("remove_prefix", args, 0)
	if err != nil {
		return series.Series{}, err
	}
	return mapStringCells("remove_prefix", s, func(cell string) string {
		return strings.TrimPrefix(cell, prefix)
	})
}

func mapRemoveSuffixString(s string, args []RValue) (string, error) {
	suffix, err := stringArg("remove_suffix", args, 0)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(s, suffix), nil
}

func mapRemoveSuffixValues(_ FrameContext, s series.Series, args []RValue) (series.Series, error) {
	suffix, err := stringArg("remove_suffix", args, 0)
	if err != nil {
		return series.Series{}, err
	}
	return mapStringCells("remove_suffix", s, func(cell string) string {
		return strings.TrimSuffix(cell, suffix)
	})
}

// mapConcatString concatenates three string literals; the pipeline input
// is discarded. Column selectors only make sense against a frame, so they
// are rejected in header context.
func mapConcatString(_ string, args []RValue) (string, error) {
	var b strings.Builder
	for i := range args {
		part, err := stringArg("concat", args, i)
		if err != nil {
			return "", fmt.Errorf("concat in a header pipeline takes string arguments only: %w", err)
		}
		b.WriteString(part)
	}
	return b.String(), nil
}

// mapConcatValues concatenates three parts element-wise; string arguments
// broadcast across the frame's rows, column selectors resolve to the
// referenced column's cells.
func mapConcatValues(frame FrameContext, s series.Series, args []RValue) (series.Series, error) {
	n := frame.NumRows()
	parts := make([][]string, len(args))
	for i, arg := range args {
		switch a := arg.(type) {
		case *String:
			parts[i] = lo.Times(n, func(_ int) string { return a.Data })
		case *ColumnSelector:
			header, ok := a.Header.(*String)
			if !ok {
				return series.Series{}, fmt.Errorf(
					"map 'concat' requires string headers in column selector arguments")
			}
			col, err := frame.Column(header.Data)
			if err != nil {
				return series.Series{}, err
			}
			cells, err := stringCells("concat", col)
			if err != nil {
				return series.Series{}, err
			}
			parts[i] = cells
		default:
			return series.Series{}, fmt.Errorf(
				"map 'concat' expects string or column selector arguments")
		}
	}
	out := make([]string, n)
	for row := 0; row < n; row++ {
		var b strings.Builder
		for _, part := range parts {
			b.WriteString(part[row])
		}
		out[row] = b.String()
	}
	return series.New(out, series.String, s.Name), nil
}

func mapFormatString(s string, args []RValue) (string, error) {
	format, err := stringArg("format", args, 0)
	if err != nil {
		return "", err
	}
	return applyFormat(format, s)
}

// mapFormatValues formats every cell's rendered value, so it works on any
// column type; the result is a string column.
func mapFormatValues(_ FrameContext, s series.Series, args []RValue) (series.Series, error) {
	format, err := stringArg("format", args, 0)
	if err != nil {
		return series.Series{}, err
	}
	cells := s.Records()
	out := make([]string, len(cells))
	for i, cell := range cells {
		if out[i], err = applyFormat(format, cell); err != nil {
			return series.Series{}, err
		}
	}
	return series.New(out, series.String, s.Name), nil
}

// replaceLast replaces only the last occurrence of from with to.
func replaceLast(s string, from string, to string) string {
	idx := strings.LastIndex(s, from)
	if idx < 0 {
		return s
	}
	return s[:idx] + to + s[idx+len(from):]
}

// pySlice is s[start:stop] with Python semantics: negative indexes count
// from the end, out-of-range indexes clamp, inverted ranges are empty.
func pySlice(s string, start int, stop int) string {
	runes := []rune(s)
	n := len(runes)
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	} else if start > n {
		start = n
	}
	if stop < 0 {
		stop += n
		if stop < 0 {
			stop = 0
		}
	} else if stop > n {
		stop = n
	}
	if start >= stop {
		return ""
	}
	return string(runes[start:stop])
}

// titleCase follows Python str.title: the first letter of every alphabetic
// run is uppercased and the rest lowercased, with any non-letter ending a
// run. strings.Title does not lowercase, so it is not a substitute.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if inRun {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			inRun = true
		} else {
			b.WriteRune(r)
			inRun = false
		}
	}
	return b.String()
}

// floorDiv divides rounding toward negative infinity, as the original
// engine's // operator does.
func floorDiv(a int, b int) (int, error) {
	if b == 0 {
		return 0, fmt.Errorf("integer division or modulo by zero")
	}
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q, nil
}

func intPow(base int, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
