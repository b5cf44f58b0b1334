// Package tnl implements the Table Normalization Language: a small
// declarative DSL whose programs rewrite the headers and cell values of a
// tabular dataset into a target schema.
//
// A TNL program declares transforms, each a group of rule blocks. Header
// rules rewrite column names, value rules rewrite column contents, and
// both thread their input through a pipeline of literal assignments and
// built-in map primitives:
//
//	transform Movies {
//	    headers {
//	        'date' -> 'Year'
//	        'name' -> 'Title'
//	    }
//	    values {
//	        ['Year'] -> slice 0 4
//	        ['Title'] -> trim | title
//	    }
//	}
//
// A typical embedding parses source and applies it to a gota data frame:
//
//	module, err := tnl.ParseString("movies.tnl", src)
//	if err != nil {
//	    // fatal lex/parse error with source location
//	}
//	for _, diag := range tnl.Analyze(module) {
//	    fmt.Println(diag) // non-fatal diagnostics
//	}
//	out, err := tnl.Apply(module, dataframe.ReadCSV(input))
//
// The pipeline is source text -> Lex -> Parse -> Analyze -> Apply; each
// stage is usable on its own.
package tnl
