package tnl

import (
	"fmt"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFrame is a minimal FrameContext for exercising values maps without
// a full data frame.
type fakeFrame struct {
	rows int
	cols map[string]series.Series
}

func (f *fakeFrame) Column(name string) (series.Series, error) {
	col, ok := f.cols[name]
	if !ok {
		return series.Series{}, fmt.Errorf("unknown column '%s'", name)
	}
	return col, nil
}

func (f *fakeFrame) NumRows() int {
	return f.rows
}

func TestRegistryCapabilities(t *testing.T) {
	tests := []struct {
		name      string
		numArgs   int
		hasString bool
		hasValues bool
	}{
		{"add", 1, false, true},
		{"mult", 1, false, true},
		{"power", 1, false, true},
		{"divide", 1, false, true},
		{"auto_inc", 0, false, true},
		{"replace", 2, true, true},
		{"replace_last", 2, true, true},
		{"trim", 0, true, true},
		{"slice", 2, true, true},
		{"title", 0, true, true},
		{"upper", 0, true, true},
		{"lower", 0, true, true},
		{"remove_prefix", 1, true, true},
		{"remove_suffix", 1, true, true},
		{"concat", 3, true, true},
		{"format", 1, true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			impl, ok := LookupMap(tc.name)
			require.True(t, ok)
			assert.Equal(t, tc.numArgs, impl.NumArgs)
			assert.Equal(t, tc.hasString, impl.MapString != nil, "string capability")
			assert.Equal(t, tc.hasValues, impl.MapValues != nil, "values capability")
		})
	}
}

func TestMapExists(t *testing.T) {
	assert.True(t, MapExists("trim"))
	assert.False(t, MapExists("hello"))
}

func TestRegisterMapRejectsDuplicates(t *testing.T) {
	assert.Panics(t, func() {
		RegisterMap(&MapImpl{
			Name:      "trim",
			MapString: func(s string, _ []RValue) (string, error) { return s, nil },
		})
	})
	assert.Panics(t, func() {
		RegisterMap(&MapImpl{Name: "no_capability"})
	})
}

func TestStringMaps(t *testing.T) {
	tests := []struct {
		mapName string
		in      string
		args    []RValue
		want    string
	}{
		{"replace", "a;b;c", []RValue{&String{Data: ";"}, &String{Data: ", "}}, "a, b, c"},
		{"replace", "aaa", []RValue{&String{Data: "z"}, &String{Data: "y"}}, "aaa"},
		{"replace_last", "aaaabac", []RValue{&String{Data: "a"}, &String{Data: "b"}}, "aaaabbc"},
		{"replace_last", "abc", []RValue{&String{Data: "z"}, &String{Data: "y"}}, "abc"},
		{"trim", "  hello  ", nil, "hello"},
		{"slice", "2020-01-01", []RValue{&Number{Data: 0}, &Number{Data: 4}}, "2020"},
		{"title", "the shape of water", nil, "The Shape Of Water"},
		{"title", "HELLO wOrld", nil, "Hello World"},
		{"upper", "hello", nil, "HELLO"},
		{"lower", "HeLLo", nil, "hello"},
		{"remove_prefix", "prefix_rest", []RValue{&String{Data: "prefix_"}}, "rest"},
		{"remove_prefix", "rest", []RValue{&String{Data: "prefix_"}}, "rest"},
		{"remove_suffix", "rest_suffix", []RValue{&String{Data: "_suffix"}}, "rest"},
		{"remove_suffix", "rest", []RValue{&String{Data: "_suffix"}}, "rest"},
		{"concat", "ignored", []RValue{&String{Data: "a"}, &String{Data: "-"}, &String{Data: "b"}}, "a-b"},
		{"format", "earth", []RValue{&String{Data: "hello {}"}}, "hello earth"},
		{"format", "earth", []RValue{&String{Data: "{0}!"}}, "earth!"},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s(%q)", tc.mapName, tc.in), func(t *testing.T) {
			impl, ok := LookupMap(tc.mapName)
			require.True(t, ok)
			require.NotNil(t, impl.MapString)
			got, err := impl.MapString(tc.in, tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStringMapArgumentTypes(t *testing.T) {
	impl, _ := LookupMap("slice")
	_, err := impl.MapString("abc", []RValue{&String{Data: "x"}, &Number{Data: 2}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects a number")

	impl, _ = LookupMap("replace")
	_, err = impl.MapString("abc", []RValue{&Number{Data: 1}, &String{Data: "y"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects a string")
}

func TestArithmeticValuesMaps(t *testing.T) {
	frame := &fakeFrame{rows: 3}
	col := series.New([]int{1, 2, 3}, series.Int, "n")

	tests := []struct {
		mapName string
		arg     int
		want    []string
	}{
		{"add", 10, []string{"11", "12", "13"}},
		{"mult", 2, []string{"2", "4", "6"}},
		{"power", 3, []string{"1", "8", "27"}},
		{"divide", 2, []string{"0", "1", "1"}},
	}
	for _, tc := range tests {
		t.Run(tc.mapName, func(t *testing.T) {
			impl, ok := LookupMap(tc.mapName)
			require.True(t, ok)
			out, err := impl.MapValues(frame, col, []RValue{&Number{Data: tc.arg}})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Records())
			assert.Equal(t, "n", out.Name)
			assert.Equal(t, series.Int, out.Type())
		})
	}
}

func TestDivideFloorsTowardNegativeInfinity(t *testing.T) {
	impl, _ := LookupMap("divide")
	col := series.New([]int{-3, -2, 3}, series.Int, "n")
	out, err := impl.MapValues(&fakeFrame{rows: 3}, col, []RValue{&Number{Data: 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"-2", "-1", "1"}, out.Records())
}

func TestDivideByZero(t *testing.T) {
	impl, _ := LookupMap("divide")
	col := series.New([]int{1}, series.Int, "n")
	_, err := impl.MapValues(&fakeFrame{rows: 1}, col, []RValue{&Number{Data: 0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division")
}

func TestArithmeticRequiresNumericColumn(t *testing.T) {
	impl, _ := LookupMap("add")
	col := series.New([]string{"a", "b"}, series.String, "s")
	_, err := impl.MapValues(&fakeFrame{rows: 2}, col, []RValue{&Number{Data: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot apply map 'add'")
}

func TestStringValuesMapsRequireStringColumn(t *testing.T) {
	impl, _ := LookupMap("trim")
	col := series.New([]int{1, 2}, series.Int, "n")
	_, err := impl.MapValues(&fakeFrame{rows: 2}, col, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot apply map 'trim'")
}

func TestAutoIncValues(t *testing.T) {
	impl, _ := LookupMap("auto_inc")
	col := series.New([]string{"x", "y", "z"}, series.String, "idx")
	out, err := impl.MapValues(&fakeFrame{rows: 3}, col, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, out.Records())
	assert.Equal(t, "idx", out.Name)
}

func TestConcatValuesBroadcastsStrings(t *testing.T) {
	frame := &fakeFrame{
		rows: 2,
		cols: map[string]series.Series{
			"first": series.New([]string{"ada", "alan"}, series.String, "first"),
			"last":  series.New([]string{"lovelace", "turing"}, series.String, "last"),
		},
	}
	impl, _ := LookupMap("concat")
	col := series.New([]string{"", ""}, series.String, "full")
	out, err := impl.MapValues(frame, col, []RValue{
		&ColumnSelector{Header: &String{Data: "first"}},
		&String{Data: " "},
		&ColumnSelector{Header: &String{Data: "last"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ada lovelace", "alan turing"}, out.Records())
}

func TestFormatValuesWorksOnAnyColumnType(t *testing.T) {
	impl, _ := LookupMap("format")
	col := series.New([]int{1, 2}, series.Int, "n")
	out, err := impl.MapValues(&fakeFrame{rows: 2}, col, []RValue{&String{Data: "#{}"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"#1", "#2"}, out.Records())
	assert.Equal(t, series.String, out.Type())
}

func TestPySlice(t *testing.T) {
	tests := []struct {
		s           string
		start, stop int
		want        string
	}{
		{"2020-01-01", 0, 4, "2020"},
		{"abc", 0, 10, "abc"},
		{"abc", 1, 2, "b"},
		{"abc", 2, 1, ""},
		{"abc", -2, 3, "bc"},
		{"abc", 0, -1, "ab"},
		{"abc", -10, -8, ""},
		{"", 0, 4, ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, pySlice(tc.s, tc.start, tc.stop),
			"pySlice(%q, %d, %d)", tc.s, tc.start, tc.stop)
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
		{6, 3, 2},
		{-6, 3, -2},
	}
	for _, tc := range tests {
		got, err := floorDiv(tc.a, tc.b)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "floorDiv(%d, %d)", tc.a, tc.b)
	}
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("hello {}"))
	assert.NoError(t, validateFormat("{0} and {0}"))
	assert.NoError(t, validateFormat("literal {{braces}}"))
	assert.NoError(t, validateFormat("no fields"))

	err := validateFormat(" {planet")
	require.Error(t, err)
	assert.EqualError(t, err, "expected '}' before end of string")

	err = validateFormat("a} b")
	require.Error(t, err)
	assert.EqualError(t, err, "Single '}' encountered in format string")
}

func TestApplyFormat(t *testing.T) {
	got, err := applyFormat("hello {}", "earth")
	require.NoError(t, err)
	assert.Equal(t, "hello earth", got)

	got, err = applyFormat("{0} {0}!", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi hi!", got)

	got, err = applyFormat("{{}} {}", "x")
	require.NoError(t, err)
	assert.Equal(t, "{} x", got)

	_, err = applyFormat("{planet}", "earth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format field 'planet'")
}
