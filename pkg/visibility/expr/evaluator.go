package expr

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-quoteform/pkg/visibility"
)

// Evaluator is a small, dependency-free rule evaluator over string values.
//
// Supported syntax:
// - truthiness: `postalCode` (true when the value is not blank)
// - comparisons: `vehicleType == "carro"`, `vehicleUsage != ""`
// - composition: `!a`, `a && b`, `a || (b && c)`
//
// Compiled rules are cached, so evaluating the same rule on every render only
// pays the parse cost once.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]node
}

var (
	_ visibility.Evaluator = (*Evaluator)(nil)
	_ visibility.Inspector = (*Evaluator)(nil)
)

func New() *Evaluator {
	return &Evaluator{cache: make(map[string]node)}
}

// Eval compiles (or reuses) the rule and evaluates it against ctx.Values. A
// blank rule always evaluates to true.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	n, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	if n == nil {
		return true, nil
	}
	return n.eval(ctx.Values), nil
}

// Compile validates a rule without evaluating it.
func (e *Evaluator) Compile(rule string) error {
	_, err := e.compile(rule)
	return err
}

// References lists the identifiers a rule reads, sorted and de-duplicated.
func (e *Evaluator) References(rule string) ([]string, error) {
	n, err := e.compile(rule)
	if err != nil || n == nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	n.refs(seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (e *Evaluator) compile(rule string) (node, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return nil, nil
	}

	e.mu.RLock()
	cached, ok := e.cache[trimmed]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("visibility/expr: unexpected %q in rule %q", p.tokens[p.pos].raw, trimmed)
	}

	e.mu.Lock()
	if e.cache == nil {
		e.cache = make(map[string]node)
	}
	e.cache[trimmed] = n
	e.mu.Unlock()
	return n, nil
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case ch == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				i += 2
				continue
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			i++
		case ch == '=':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, fmt.Errorf("visibility/expr: unexpected '='; use '=='")
			}
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
			i += 2
		case ch == '&':
			if i+1 >= len(input) || input[i+1] != '&' {
				return nil, fmt.Errorf("visibility/expr: unexpected '&'; use '&&'")
			}
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
			i += 2
		case ch == '|':
			if i+1 >= len(input) || input[i+1] != '|' {
				return nil, fmt.Errorf("visibility/expr: unexpected '|'; use '||'")
			}
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
			i += 2
		case ch == '"' || ch == '\'':
			value, next, err := readString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			i = next
		case isIdentByte(ch):
			start := i
			for i < len(input) && isIdentByte(input[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdentifier, raw: input[start:i]})
		default:
			return nil, fmt.Errorf("visibility/expr: unexpected character %q", ch)
		}
	}
	return tokens, nil
}

func readString(input string, start int) (string, int, error) {
	quote := input[start]
	var b strings.Builder
	for i := start + 1; i < len(input); i++ {
		ch := input[i]
		if ch == '\\' && i+1 < len(input) {
			b.WriteByte(input[i+1])
			i++
			continue
		}
		if ch == quote {
			return b.String(), i + 1, nil
		}
		b.WriteByte(ch)
	}
	return "", 0, fmt.Errorf("visibility/expr: unterminated string literal")
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch == '.' || ch == '-' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenOr {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenAnd {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	tok, ok := p.peek()
	if ok && tok.kind == tokenNot {
		p.pos++
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("visibility/expr: unexpected end of rule")
	}
	if tok.kind == tokenLParen {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokenRParen {
			return nil, fmt.Errorf("visibility/expr: missing ')'")
		}
		p.pos++
		return inner, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, ok := p.peek()
	if !ok || (op.kind != tokenEq && op.kind != tokenNeq) {
		return truthyNode{operand: left}, nil
	}
	p.pos++
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return compareNode{left: left, right: right, negate: op.kind == tokenNeq}, nil
}

func (p *parser) parseOperand() (operand, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("visibility/expr: expected operand at end of rule")
	}
	switch tok.kind {
	case tokenIdentifier:
		p.pos++
		return fieldOperand(tok.raw), nil
	case tokenString:
		p.pos++
		return literalOperand(tok.raw), nil
	default:
		return nil, fmt.Errorf("visibility/expr: expected operand, got %q", tok.raw)
	}
}

type node interface {
	eval(values map[string]string) bool
	refs(out map[string]struct{})
}

type operand interface {
	resolve(values map[string]string) string
	refs(out map[string]struct{})
}

type fieldOperand string

func (f fieldOperand) resolve(values map[string]string) string {
	return values[string(f)]
}

func (f fieldOperand) refs(out map[string]struct{}) {
	out[string(f)] = struct{}{}
}

type literalOperand string

func (l literalOperand) resolve(map[string]string) string { return string(l) }
func (literalOperand) refs(map[string]struct{})           {}

type truthyNode struct {
	operand operand
}

func (n truthyNode) eval(values map[string]string) bool {
	return strings.TrimSpace(n.operand.resolve(values)) != ""
}

func (n truthyNode) refs(out map[string]struct{}) { n.operand.refs(out) }

type compareNode struct {
	left, right operand
	negate      bool
}

func (n compareNode) eval(values map[string]string) bool {
	equal := strings.TrimSpace(n.left.resolve(values)) == strings.TrimSpace(n.right.resolve(values))
	if n.negate {
		return !equal
	}
	return equal
}

func (n compareNode) refs(out map[string]struct{}) {
	n.left.refs(out)
	n.right.refs(out)
}

type notNode struct {
	inner node
}

func (n notNode) eval(values map[string]string) bool { return !n.inner.eval(values) }
func (n notNode) refs(out map[string]struct{})        { n.inner.refs(out) }

type andNode struct {
	left, right node
}

func (n andNode) eval(values map[string]string) bool {
	return n.left.eval(values) && n.right.eval(values)
}

func (n andNode) refs(out map[string]struct{}) {
	n.left.refs(out)
	n.right.refs(out)
}

type orNode struct {
	left, right node
}

func (n orNode) eval(values map[string]string) bool {
	return n.left.eval(values) || n.right.eval(values)
}

func (n orNode) refs(out map[string]struct{}) {
	n.left.refs(out)
	n.right.refs(out)
}
