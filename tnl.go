package tnl

// Version string
const Version = "v1"

// ParseString lexes and parses TNL source in one step. The name is used
// in error messages and token positions.
func ParseString(name string, src string) (*Module, error) {
	tokens, err := Lex(name, src)
	if err != nil {
		return nil, err
	}
	return Parse(name, tokens)
}

// Must panics if a module couldn't successfully be parsed. This is how you
// would use it:
//
//	var module = tnl.Must(tnl.ParseString("rules.tnl", src))
func Must(module *Module, err error) *Module {
	if err != nil {
		panic(err)
	}
	return module
}
