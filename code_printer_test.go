package tnl

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sources already in canonical form: printing them back must reproduce
// the input exactly.
var canonicalSources = []struct {
	name string
	src  string
}{
	{
		name: "headers and values",
		src: `transform Test {
    headers {
        'a' -> 'AA'
        'B' -> 'BB'
        'C' -> 'CC'
    }
    values {
        ['AA'] -> {
            | add 1
            | mult 2
        }
        ['BB'] -> 999
        ['CC'] -> {
            | replace '  ' ' '
            | trim
        }
    }
}`,
	},
	{
		name: "string rvalue",
		src: `transform Test {
    headers {
        'idx' -> 'Idx'
        'Year-Month-Day' -> slice 0 4
    }
    values {
        'Year' -> slice 0 4
    }
}`,
	},
	{
		name: "header pattern",
		src: `transform Test {
    headers {
        /(\s+.*)|(.*\s+)/ -> trim
    }
}`,
	},
	{
		name: "values pattern",
		src: `transform Test {
    values {
        [/upp*./] -> upper
    }
}`,
	},
	{
		name: "booleans",
		src: `transform Test {
    values {
        ['a'] -> True
        ['b'] -> False
    }
}`,
	},
	{
		name: "two transforms",
		src: `transform First {
    headers {
        'a' -> upper
    }
}
transform Second {
    values {
        ['b'] -> concat ['a'] '-' ['c']
    }
}`,
	},
}

func TestPrintModuleCodeCanonical(t *testing.T) {
	for _, tc := range canonicalSources {
		t.Run(tc.name, func(t *testing.T) {
			module := mustParse(t, tc.src)
			printed := SprintModuleCode(module)
			assert.Equal(t, tc.src, strings.TrimSpace(printed))
		})
	}
}

// parse(print(parse(src))) must equal parse(src) for any valid source,
// canonical or not.
func TestPrintParseRoundTrip(t *testing.T) {
	sources := make([]struct {
		name string
		src  string
	}, 0, len(canonicalSources)+2)
	sources = append(sources, canonicalSources...)
	sources = append(sources,
		struct {
			name string
			src  string
		}{
			name: "messy layout",
			src: `

transform Test {

    headers {

        'a' -> | trim | upper


        /b|d/ -> lower
    }
}
`,
		},
		struct {
			name string
			src  string
		}{
			name: "single op block collapses to inline",
			src: `transform Test {
    values {
        ['a'] -> {
            | trim
        }
    }
}`,
		},
	)
	for _, tc := range sources {
		t.Run(tc.name, func(t *testing.T) {
			first := mustParse(t, tc.src)
			second := mustParse(t, SprintModuleCode(first))
			diff := cmp.Diff(first, second, cmpopts.IgnoreUnexported(Pattern{}))
			require.Empty(t, diff)
		})
	}
}

func TestPrintModuleASTShape(t *testing.T) {
	module := mustParse(t, `
transform Test {
    headers {
        'a' -> trim
    }
}
`)
	dump := SprintModuleAST(module)
	assert.Contains(t, dump, "Module(")
	assert.Contains(t, dump, "Transform(")
	assert.Contains(t, dump, "name=Name(data='Test')")
	assert.Contains(t, dump, "HeaderBlock(")
	assert.Contains(t, dump, "header=String(data='a')")
	assert.Contains(t, dump, "Map(")
	assert.Contains(t, dump, "name=Name(data='trim')")
	assert.Contains(t, dump, "args=[],")
}
