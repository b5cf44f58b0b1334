package tnl

import (
	"fmt"
	"strconv"
	"strings"
)

// Language keywords. Together with the built-in map names they form the
// reserved words that cannot name a user-defined transform.
const (
	keywordTransform = "transform"
	keywordTest      = "test"
	keywordAliases   = "aliases"
	keywordHeaders   = "headers"
	keywordValues    = "values"
	keywordIf        = "if"
	keywordElse      = "else"
)

var keywords = map[string]struct{}{
	keywordTransform: {},
	keywordTest:      {},
	keywordAliases:   {},
	keywordHeaders:   {},
	keywordValues:    {},
	keywordIf:        {},
	keywordElse:      {},
}

// IsReservedName reports whether name is a keyword or a built-in map name.
func IsReservedName(name string) bool {
	if _, isKeyword := keywords[name]; isKeyword {
		return true
	}
	return MapExists(name)
}

// Parser consumes a token stream and produces a Module. It is a
// single-token-lookahead recursive descent parser; all parse errors are
// fatal and carry the offending token's location.
type Parser struct {
	name   string
	idx    int
	tokens []*Token
}

// Parse builds a Module from the given token stream. The stream must be
// terminated by an EOF token, as produced by Lex.
func Parse(name string, tokens []*Token) (*Module, error) {
	p := newParser(name, tokens)
	return p.parseModule()
}

func newParser(name string, tokens []*Token) *Parser {
	return &Parser{
		name:   name,
		tokens: tokens,
	}
}

func (p *Parser) Consume() {
	p.ConsumeN(1)
}

func (p *Parser) ConsumeN(count int) {
	p.idx += count
}

// Current returns the token under the cursor. Once the stream is
// exhausted it keeps returning the trailing EOF token.
func (p *Parser) Current() *Token {
	return p.Get(p.idx)
}

func (p *Parser) Get(i int) *Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) Remaining() int {
	return len(p.tokens) - p.idx
}

// MatchKind consumes and returns the current token if it has the given
// kind; otherwise it returns nil and consumes nothing.
func (p *Parser) MatchKind(kind TokenKind) *Token {
	if t := p.PeekKind(kind); t != nil {
		p.Consume()
		return t
	}
	return nil
}

// PeekKind returns the current token if it has the given kind.
func (p *Parser) PeekKind(kind TokenKind) *Token {
	if t := p.Current(); t.Kind == kind {
		return t
	}
	return nil
}

// Error produces a parser error anchored to the given token (or the
// current token when nil).
func (p *Parser) Error(msg string, token *Token) error {
	if token == nil {
		token = p.Current()
	}
	return &Error{
		Filename:  p.name,
		Line:      token.Line,
		Column:    token.Col,
		Token:     token,
		Sender:    "parser",
		OrigError: fmt.Errorf("%s", msg),
	}
}

func (p *Parser) errorExpecting(kinds ...TokenKind) error {
	tok := p.Current()
	if len(kinds) == 1 {
		return p.Error(fmt.Sprintf(
			"Expected token %s, but found %s at %s.",
			kinds[0], tok.Kind, tok.Pos(),
		), tok)
	}
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = kind.String()
	}
	return p.Error(fmt.Sprintf(
		"Expecting one of [%s], but found %s at %s.",
		strings.Join(names, ", "), tok.Kind, tok.Pos(),
	), tok)
}

func (p *Parser) expect(kinds ...TokenKind) error {
	cur := p.Current().Kind
	for _, kind := range kinds {
		if cur == kind {
			return nil
		}
	}
	return p.errorExpecting(kinds...)
}

func (p *Parser) expectAndEat(kind TokenKind) (*Token, error) {
	if err := p.expect(kind); err != nil {
		return nil, err
	}
	tok := p.Current()
	p.Consume()
	return tok, nil
}

func (p *Parser) eatAnyNewlines() {
	for p.MatchKind(TokenNewline) != nil {
	}
}

func (p *Parser) eatNewlinesExpectingAtLeastOne() error {
	if _, err := p.expectAndEat(TokenNewline); err != nil {
		return err
	}
	p.eatAnyNewlines()
	return nil
}

// atDefinition reports whether the cursor sits on a top-level definition
// keyword (`transform` or `test` lex as NAME).
func (p *Parser) atDefinition() bool {
	tok := p.Current()
	return tok.Kind == TokenName &&
		(tok.Lexeme == keywordTransform || tok.Lexeme == keywordTest)
}

// module := NL* definition* EOF
func (p *Parser) parseModule() (*Module, error) {
	var definitions []Definition
	p.eatAnyNewlines()
	for p.atDefinition() {
		definition, err := p.parseDefinition()
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, definition)
		p.eatAnyNewlines()
	}
	if err := p.expect(TokenEOF); err != nil {
		return nil, err
	}
	return &Module{Definitions: definitions}, nil
}

func (p *Parser) parseDefinition() (Definition, error) {
	if p.Current().Lexeme == keywordTest {
		return nil, p.Error("Test definitions are not implemented.", nil)
	}
	return p.parseTransform()
}

// transform := 'transform' NAME '{' NL* rule_block* '}' NL*
func (p *Parser) parseTransform() (*Transform, error) {
	p.Consume() // the 'transform' keyword
	if err := p.expect(TokenName); err != nil {
		return nil, err
	}
	nameTok := p.Current()
	if IsReservedName(nameTok.Lexeme) {
		return nil, p.Error(fmt.Sprintf(
			"Name %s is a reserved word and cannot be used as a transform name.",
			nameTok.Lexeme,
		), nameTok)
	}
	p.Consume()
	p.eatAnyNewlines()
	if _, err := p.expectAndEat(TokenLBracket); err != nil {
		return nil, err
	}
	p.eatAnyNewlines()
	var ruleBlocks []RuleBlock
	for p.Current().Kind != TokenRBracket && p.Current().Kind != TokenEOF {
		ruleBlock, err := p.parseRuleBlock()
		if err != nil {
			return nil, err
		}
		ruleBlocks = append(ruleBlocks, ruleBlock)
	}
	if _, err := p.expectAndEat(TokenRBracket); err != nil {
		return nil, err
	}
	p.eatAnyNewlines()
	return &Transform{Name: &Name{Data: nameTok.Lexeme}, RuleBlocks: ruleBlocks}, nil
}

// rule_block := alias_block | header_block | value_block
func (p *Parser) parseRuleBlock() (RuleBlock, error) {
	if err := p.expect(TokenName); err != nil {
		return nil, err
	}
	switch kind := p.Current().Lexeme; kind {
	case keywordAliases:
		return nil, p.Error("Alias blocks are not implemented.", nil)
	case keywordHeaders:
		return p.parseHeaderBlock()
	case keywordValues:
		return p.parseValueBlock()
	default:
		return nil, p.Error(fmt.Sprintf(
			"Expected %s, %s, or %s, but found %s.",
			keywordAliases, keywordHeaders, keywordValues, kind,
		), nil)
	}
}

// header_block := 'headers' '{' NL* header_rule* '}' NL*
func (p *Parser) parseHeaderBlock() (*HeaderBlock, error) {
	p.Consume() // the 'headers' keyword
	p.eatAnyNewlines()
	if _, err := p.expectAndEat(TokenLBracket); err != nil {
		return nil, err
	}
	p.eatAnyNewlines()
	var headerRules []*HeaderRule
	for p.Current().Kind != TokenRBracket && p.Current().Kind != TokenEOF {
		headerRule, err := p.parseHeaderRule()
		if err != nil {
			return nil, err
		}
		headerRules = append(headerRules, headerRule)
	}
	if _, err := p.expectAndEat(TokenRBracket); err != nil {
		return nil, err
	}
	p.eatAnyNewlines()
	return &HeaderBlock{HeaderRules: headerRules}, nil
}

// header_rule := header '->' execution NL+
func (p *Parser) parseHeaderRule() (*HeaderRule, error) {
	header, err := p.parseHeader()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectAndEat(TokenArrow); err != nil {
		return nil, err
	}
	pipeline, err := p.parseExecution()
	if err != nil {
		return nil, err
	}
	if err := p.eatNewlinesExpectingAtLeastOne(); err != nil {
		return nil, err
	}
	return &HeaderRule{Header: header, Pipeline: pipeline}, nil
}

// header := STRING | NAME | PATTERN
func (p *Parser) parseHeader() (Header, error) {
	switch p.Current().Kind {
	case TokenString:
		return p.parseString()
	case TokenName:
		return p.parseName()
	case TokenPattern:
		return p.parsePattern()
	default:
		return nil, p.errorExpecting(TokenString, TokenName, TokenPattern)
	}
}

// value_block := 'values' '{' NL* value_rule* '}' NL*
func (p *Parser) parseValueBlock() (*ValueBlock, error) {
	p.Consume() // the 'values' keyword
	p.eatAnyNewlines()
	if _, err := p.expectAndEat(TokenLBracket); err != nil {
		return nil, err
	}
	p.eatAnyNewlines()
	var valueRules []*ValueRule
	for p.Current().Kind != TokenRBracket && p.Current().Kind != TokenEOF {
		valueRule, err := p.parseValueRule()
		if err != nil {
			return nil, err
		}
		valueRules = append(valueRules, valueRule)
	}
	if _, err := p.expectAndEat(TokenRBracket); err != nil {
		return nil, err
	}
	p.eatAnyNewlines()
	return &ValueBlock{ValueRules: valueRules}, nil
}

// value_rule := rvalue '->' execution NL*
func (p *Parser) parseValueRule() (*ValueRule, error) {
	rvalue, err := p.parseRValue()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectAndEat(TokenArrow); err != nil {
		return nil, err
	}
	pipeline, err := p.parseExecution()
	if err != nil {
		return nil, err
	}
	p.eatAnyNewlines()
	return &ValueRule{RValue: rvalue, Pipeline: pipeline}, nil
}

// execution := single_line_pipeline | multi_line_pipeline
//
// The pipeline is multi-line iff the token immediately following the
// arrow is '{'.
func (p *Parser) parseExecution() (*Pipeline, error) {
	var operations []Operation
	var err error
	if p.Current().Kind == TokenLBracket {
		operations, err = p.parseMultiLinePipeline()
	} else {
		operations, err = p.parseSingleLinePipeline()
	}
	if err != nil {
		return nil, err
	}
	return &Pipeline{Operations: operations}, nil
}

// single_line := '|'? operation ('|' operation)*
func (p *Parser) parseSingleLinePipeline() ([]Operation, error) {
	p.MatchKind(TokenPipe) // leading pipe is optional
	var operations []Operation
	operation, err := p.parseOperation()
	if err != nil {
		return nil, err
	}
	operations = append(operations, operation)
	for p.MatchKind(TokenPipe) != nil {
		operation, err := p.parseOperation()
		if err != nil {
			return nil, err
		}
		operations = append(operations, operation)
	}
	return operations, nil
}

// multi_line := '{' NL* ('|'? operation NL+)+ '}'
func (p *Parser) parseMultiLinePipeline() ([]Operation, error) {
	if _, err := p.expectAndEat(TokenLBracket); err != nil {
		return nil, err
	}
	p.eatAnyNewlines()
	var operations []Operation
	for p.Current().Kind != TokenRBracket && p.Current().Kind != TokenEOF {
		moreOperations, err := p.parseSingleLinePipeline()
		if err != nil {
			return nil, err
		}
		operations = append(operations, moreOperations...)
		p.eatAnyNewlines()
	}
	if _, err := p.expectAndEat(TokenRBracket); err != nil {
		return nil, err
	}
	return operations, nil
}

// operation := conditional | map | expr
func (p *Parser) parseOperation() (Operation, error) {
	if tok := p.PeekKind(TokenName); tok != nil {
		switch tok.Lexeme {
		case keywordIf:
			return nil, p.Error("Conditional operations are not implemented.", tok)
		case "True", "False":
			return p.parseBoolean()
		}
		return p.parseMap()
	}
	return p.parseExpr()
}

// map := NAME rvalue{num_args}
//
// The map's argument count is fixed by its registry declaration, so the
// parser knows exactly how many rvalues to consume.
func (p *Parser) parseMap() (*Map, error) {
	nameTok := p.Current()
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	impl, ok := LookupMap(name.Data)
	if !ok {
		return nil, p.Error(fmt.Sprintf("Unrecognized map '%s'.", name.Data), nameTok)
	}
	args := make([]RValue, 0, impl.NumArgs)
	for i := 0; i < impl.NumArgs; i++ {
		arg, err := p.parseRValue()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &Map{Name: name, Args: args}, nil
}

// rvalue := NAME | STRING | NUMBER | PATTERN | column_selector
//
// The lexemes True and False arrive as NAME tokens and are promoted to
// boolean literals here.
func (p *Parser) parseRValue() (RValue, error) {
	switch p.Current().Kind {
	case TokenName:
		if lexeme := p.Current().Lexeme; lexeme == "True" || lexeme == "False" {
			return p.parseBoolean()
		}
		return p.parseName()
	case TokenString:
		return p.parseString()
	case TokenNumber:
		return p.parseNumber()
	case TokenPattern:
		return p.parsePattern()
	case TokenLBrace:
		return p.parseColumnSelector()
	default:
		return nil, p.errorExpecting(
			TokenName,
			TokenString,
			TokenNumber,
			TokenPattern,
			TokenLBrace,
		)
	}
}

// expr := NUMBER | STRING | column_selector
func (p *Parser) parseExpr() (Expr, error) {
	switch p.Current().Kind {
	case TokenNumber:
		return p.parseNumber()
	case TokenString:
		return p.parseString()
	case TokenLBrace:
		return p.parseColumnSelector()
	default:
		return nil, p.errorExpecting(TokenNumber, TokenString, TokenLBrace)
	}
}

func (p *Parser) parseString() (*String, error) {
	tok, err := p.expectAndEat(TokenString)
	if err != nil {
		return nil, err
	}
	return &String{Data: tok.Lexeme}, nil
}

func (p *Parser) parsePattern() (*Pattern, error) {
	tok, err := p.expectAndEat(TokenPattern)
	if err != nil {
		return nil, err
	}
	return &Pattern{Data: tok.Lexeme}, nil
}

func (p *Parser) parseName() (*Name, error) {
	tok, err := p.expectAndEat(TokenName)
	if err != nil {
		return nil, err
	}
	return &Name{Data: tok.Lexeme}, nil
}

func (p *Parser) parseNumber() (*Number, error) {
	tok, err := p.expectAndEat(TokenNumber)
	if err != nil {
		return nil, err
	}
	data, convErr := strconv.Atoi(tok.Lexeme)
	if convErr != nil {
		return nil, p.Error(fmt.Sprintf("Invalid number literal %s.", tok.Lexeme), tok)
	}
	return &Number{Data: data}, nil
}

func (p *Parser) parseBoolean() (*Boolean, error) {
	tok, err := p.expectAndEat(TokenName)
	if err != nil {
		return nil, err
	}
	return &Boolean{Data: tok.Lexeme == "True"}, nil
}

// column_selector := '[' header ']'
func (p *Parser) parseColumnSelector() (*ColumnSelector, error) {
	if _, err := p.expectAndEat(TokenLBrace); err != nil {
		return nil, err
	}
	header, err := p.parseHeader()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectAndEat(TokenRBrace); err != nil {
		return nil, err
	}
	return &ColumnSelector{Header: header}, nil
}
