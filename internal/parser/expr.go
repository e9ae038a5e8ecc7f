package parser

import (
	"strings"

	"github.com/jcorbin/pohlang/internal/ast"
	"github.com/jcorbin/pohlang/internal/phrase"
)

// exprParser is a precedence-climbing recursive-descent parser over a
// flat token stream, implementing the level order of §4.2: Or, And, Not,
// Comparison, Additive, Multiplicative, Postfix-index, Term.
type exprParser struct {
	toks []token
	pos  int
	p    *Parser
}

func (p *Parser) parseExprString(s string) (ast.Expr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, p.errHere("Empty expression")
	}
	toks, err := tokenize(s)
	if err != nil {
		return nil, p.errHere("%v", err)
	}
	ep := &exprParser{toks: toks, p: p}
	expr, err := ep.parseOr()
	if err != nil {
		return nil, err
	}
	if ep.cur().kind != tEOF {
		return nil, p.errHere("unexpected token %q", ep.cur().text)
	}
	return expr, nil
}

func (ep *exprParser) cur() token { return ep.toks[ep.pos] }

func (ep *exprParser) parseOr() (ast.Expr, error) {
	left, err := ep.parseAnd()
	if err != nil {
		return nil, err
	}
	for ep.cur().kind == tKeyword && ep.cur().text == phrase.KeywordOr {
		ep.pos++
		right, err := ep.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Op: ast.LogOr, Left: left, Right: right}
	}
	return left, nil
}

func (ep *exprParser) parseAnd() (ast.Expr, error) {
	left, err := ep.parseNot()
	if err != nil {
		return nil, err
	}
	for ep.cur().kind == tKeyword && ep.cur().text == phrase.KeywordAnd {
		ep.pos++
		right, err := ep.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Op: ast.LogAnd, Left: left, Right: right}
	}
	return left, nil
}

func (ep *exprParser) parseNot() (ast.Expr, error) {
	if ep.cur().kind == tKeyword && ep.cur().text == phrase.KeywordNot {
		ep.pos++
		x, err := ep.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Not{X: x}, nil
	}
	return ep.parseComparison()
}

var cmpOps = map[string]ast.CompareOp{
	"is greater than or equal to": ast.CmpGe,
	">=":                          ast.CmpGe,
	"is less than or equal to":    ast.CmpLe,
	"<=":                          ast.CmpLe,
	"is not equal to":             ast.CmpNe,
	"!=":                          ast.CmpNe,
	"is greater than":             ast.CmpGt,
	">":                           ast.CmpGt,
	"is less than":                ast.CmpLt,
	"<":                           ast.CmpLt,
	"is equal to":                 ast.CmpEq,
	"==":                          ast.CmpEq,
	"is":                          ast.CmpEq,
	"=":                           ast.CmpEq,
}

func (ep *exprParser) parseComparison() (ast.Expr, error) {
	left, err := ep.parseAdditive()
	if err != nil {
		return nil, err
	}
	tok := ep.cur()
	var opText string
	if tok.kind == tKeyword {
		opText = tok.text
	} else if tok.kind == tSymbol {
		opText = tok.text
	}
	if op, ok := cmpOps[opText]; ok {
		ep.pos++
		right, err := ep.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.Compare{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (ep *exprParser) parseAdditive() (ast.Expr, error) {
	left, err := ep.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		tok := ep.cur()
		var op ast.BinaryOp
		switch {
		case tok.kind == tKeyword && tok.text == "plus", tok.kind == tSymbol && tok.text == "+":
			op = ast.OpAdd
		case tok.kind == tKeyword && tok.text == "minus", tok.kind == tSymbol && tok.text == "-":
			op = ast.OpSub
		default:
			return left, nil
		}
		ep.pos++
		right, err := ep.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
}

func (ep *exprParser) parseMultiplicative() (ast.Expr, error) {
	left, err := ep.parsePostfix()
	if err != nil {
		return nil, err
	}
	for {
		tok := ep.cur()
		var op ast.BinaryOp
		switch {
		case tok.kind == tKeyword && tok.text == "times", tok.kind == tSymbol && tok.text == "*":
			op = ast.OpMul
		case tok.kind == tKeyword && tok.text == "divided by", tok.kind == tSymbol && tok.text == "/":
			op = ast.OpDiv
		default:
			return left, nil
		}
		ep.pos++
		right, err := ep.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
}

func (ep *exprParser) parsePostfix() (ast.Expr, error) {
	base, err := ep.parseTerm()
	if err != nil {
		return nil, err
	}
	for ep.cur().kind == tSymbol && ep.cur().text == "[" {
		ep.pos++
		idx, err := ep.parseOr()
		if err != nil {
			return nil, err
		}
		if !(ep.cur().kind == tSymbol && ep.cur().text == "]") {
			return nil, ep.p.errHere("expected ']' to close index expression")
		}
		ep.pos++
		base = &ast.Index{Base: base, Idx: idx}
	}
	return base, nil
}

// peekPhrase joins the text of the next n tokens (lowercased for
// identifiers, as-is for keywords) iff they are all ident/keyword tokens.
func (ep *exprParser) peekPhrase(n int) (string, bool) {
	if ep.pos+n > len(ep.toks) {
		return "", false
	}
	words := make([]string, n)
	for i := 0; i < n; i++ {
		t := ep.toks[ep.pos+i]
		if t.kind != tIdent && t.kind != tKeyword {
			return "", false
		}
		w := t.text
		if t.kind == tIdent {
			w = strings.ToLower(w)
		}
		words[i] = w
	}
	return strings.Join(words, " "), true
}

// findTopLevelKeywordFrom scans tokens from start for a top-level (outside
// any bracket nesting) keyword token matching kw.
func (ep *exprParser) findTopLevelKeywordFrom(start int, kw string) (int, bool) {
	depth := 0
	for i := start; i < len(ep.toks); i++ {
		t := ep.toks[i]
		if t.kind == tSymbol {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth > 0 {
					depth--
				}
			}
		}
		if depth == 0 && t.kind == tKeyword && t.text == kw {
			return i, true
		}
	}
	return -1, false
}

// parseExprUpTo parses a bounded sub-expression occupying tokens
// [ep.pos, end) without mutating ep.pos.
func (ep *exprParser) parseExprUpTo(end int) (ast.Expr, error) {
	toks := append([]token{}, ep.toks[ep.pos:end]...)
	toks = append(toks, token{kind: tEOF})
	sub := &exprParser{toks: toks, p: ep.p}
	e, err := sub.parseOr()
	if err != nil {
		return nil, err
	}
	if sub.cur().kind != tEOF {
		return nil, ep.p.errHere("unexpected token in builtin argument")
	}
	return e, nil
}

// parseArgListToEnd parses a comma/"and"-separated argument list running
// to end of input, at the Comparison level (excluding And/Or, which would
// otherwise be ambiguous with the "and" list separator outside parens).
func (ep *exprParser) parseArgListToEnd() ([]ast.Expr, error) {
	var args []ast.Expr
	for {
		a, err := ep.parseComparison()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if ep.cur().kind == tKeyword && ep.cur().text == phrase.KeywordAnd {
			ep.pos++
			continue
		}
		if ep.cur().kind == tSymbol && ep.cur().text == "," {
			ep.pos++
			continue
		}
		break
	}
	return args, nil
}

func (ep *exprParser) parseDictPairsToEnd() ([]string, []ast.Expr, error) {
	var keys []string
	var vals []ast.Expr
	for {
		if ep.cur().kind != tString {
			return nil, nil, ep.p.errHere("expected a string key in dictionary literal")
		}
		k := ep.cur().str
		ep.pos++
		if !(ep.cur().kind == tKeyword && ep.cur().text == phrase.KeywordAs) {
			return nil, nil, ep.p.errHere("expected \"as\" in dictionary literal")
		}
		ep.pos++
		v, err := ep.parseComparison()
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, k)
		vals = append(vals, v)
		if ep.cur().kind == tKeyword && ep.cur().text == phrase.KeywordAnd {
			ep.pos++
			continue
		}
		if ep.cur().kind == tSymbol && ep.cur().text == "," {
			ep.pos++
			continue
		}
		break
	}
	return keys, vals, nil
}

func (ep *exprParser) parseTerm() (ast.Expr, error) {
	tok := ep.cur()

	switch tok.kind {
	case tNumber:
		ep.pos++
		return &ast.NumberLit{Value: tok.num}, nil
	case tString:
		ep.pos++
		return &ast.StringLit{Value: tok.str}, nil
	case tSymbol:
		switch tok.text {
		case "(":
			ep.pos++
			inner, err := ep.parseOr()
			if err != nil {
				return nil, err
			}
			if !(ep.cur().kind == tSymbol && ep.cur().text == ")") {
				return nil, ep.p.errHere("expected ')'")
			}
			ep.pos++
			return inner, nil
		case "[":
			return nil, ep.p.errHere("bracket list literals are not supported; use \"Make a list of ...\"")
		case "{":
			return nil, ep.p.errHere("bracket dictionary literals are not supported; use \"Make a dictionary with ...\"")
		}
		return nil, ep.p.errHere("unexpected symbol %q", tok.text)
	case tIdent:
		return ep.parseIdentTerm()
	case tKeyword:
		// "contains" doubles as a phrasal-builtin lead word ("contains x
		// in y"), so the tokenizer's keyword classification of it must
		// still reach the binary-builtin dispatch below.
		if tok.text == "contains" {
			return ep.parseIdentTerm()
		}
	}
	return nil, ep.p.errHere("unexpected end of expression")
}

func (ep *exprParser) parseIdentTerm() (ast.Expr, error) {
	tok := ep.cur()
	switch strings.ToLower(tok.text) {
	case "true":
		ep.pos++
		return &ast.BoolLit{Value: true}, nil
	case "false":
		ep.pos++
		return &ast.BoolLit{Value: false}, nil
	case "null", "nothing":
		ep.pos++
		return &ast.NullLit{}, nil
	}

	// "error of type T with message M" — explicitly not a phrasal call
	// even though "ident with ..." would otherwise claim it (§4.2).
	if strings.EqualFold(tok.text, "error") {
		if ph, ok := ep.peekPhrase(3); ok && ph == "error of type" {
			if e, consumed, ok := ep.tryParseErrorLit(); ok {
				ep.pos = consumed
				return e, nil
			}
		}
	}

	// "Make a list of ..." / "Make a dictionary with ..." literals.
	if strings.EqualFold(tok.text, "make") {
		if ph, ok := ep.peekPhrase(3); ok && ph == "make a list" {
			if ep.pos+3 < len(ep.toks) && ep.toks[ep.pos+3].kind == tKeyword && ep.toks[ep.pos+3].text == phrase.KeywordOf {
				ep.pos += 4
				items, err := ep.parseArgListToEnd()
				if err != nil {
					return nil, err
				}
				return &ast.ListLit{Items: items}, nil
			}
		}
		if ph, ok := ep.peekPhrase(3); ok && ph == "make a dictionary" {
			if ep.pos+3 < len(ep.toks) && ep.toks[ep.pos+3].kind == tKeyword && ep.toks[ep.pos+3].text == "with" {
				ep.pos += 4
				keys, vals, err := ep.parseDictPairsToEnd()
				if err != nil {
					return nil, err
				}
				return &ast.DictLit{Keys: keys, Values: vals}, nil
			}
		}
	}

	// Two-word unary-prefix builtins: "count of x", "reverse of x", ...
	if ph, ok := ep.peekPhrase(2); ok {
		if canon, found := phrase.UnaryPrefixBuiltins[ph]; found {
			ep.pos += 2
			arg, err := ep.parseComparison()
			if err != nil {
				return nil, err
			}
			return &ast.Builtin{Name: canon, Args: []ast.Expr{arg}}, nil
		}
	}
	// Three-word unary-prefix builtins: "trim spaces from x", "read file at p", ...
	if ph, ok := ep.peekPhrase(3); ok {
		if canon, found := phrase.UnarySuffixBuiltins[ph]; found {
			ep.pos += 3
			arg, err := ep.parseComparison()
			if err != nil {
				return nil, err
			}
			return &ast.Builtin{Name: canon, Args: []ast.Expr{arg}}, nil
		}
		if canon, found := phrase.FilePhrases3[ph]; found {
			ep.pos += 3
			arg, err := ep.parseComparison()
			if err != nil {
				return nil, err
			}
			return &ast.Builtin{Name: canon, Args: []ast.Expr{arg}}, nil
		}
	}

	lowLead := strings.ToLower(tok.text)

	// Binary phrasal builtins: "join e with s", "split e by s", ...
	for _, bf := range phrase.BinaryBuiltins {
		if lowLead != bf.Lead {
			continue
		}
		if midIdx, ok := ep.findTopLevelKeywordFrom(ep.pos+1, bf.Mid); ok {
			a, err := ep.parseExprUpToAt(ep.pos+1, midIdx)
			if err != nil {
				continue
			}
			savedPos := ep.pos
			ep.pos = midIdx + 1
			b, err := ep.parseComparison()
			if err != nil {
				ep.pos = savedPos
				continue
			}
			return &ast.Builtin{Name: bf.Builtin, Args: []ast.Expr{a, b}}, nil
		}
	}

	// Ternary phrasal builtin: "insert x at i in l".
	for _, tf := range phrase.TernaryBuiltins {
		if lowLead != tf.Lead {
			continue
		}
		m1, ok1 := ep.findTopLevelKeywordFrom(ep.pos+1, tf.Mid1)
		if !ok1 {
			continue
		}
		m2, ok2 := ep.findTopLevelKeywordFrom(m1+1, tf.Mid2)
		if !ok2 {
			continue
		}
		a, err := ep.parseExprUpToAt(ep.pos+1, m1)
		if err != nil {
			continue
		}
		b, err := ep.parseExprUpToAt(m1+1, m2)
		if err != nil {
			continue
		}
		ep.pos = m2 + 1
		c, err := ep.parseComparison()
		if err != nil {
			return nil, err
		}
		return &ast.Builtin{Name: tf.Builtin, Args: []ast.Expr{a, b, c}}, nil
	}

	name := tok.text
	// Symbolic call: name(args)
	if ep.pos+1 < len(ep.toks) && ep.toks[ep.pos+1].kind == tSymbol && ep.toks[ep.pos+1].text == "(" {
		ep.pos += 2
		var args []ast.Expr
		if !(ep.cur().kind == tSymbol && ep.cur().text == ")") {
			for {
				a, err := ep.parseOr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if ep.cur().kind == tSymbol && ep.cur().text == "," {
					ep.pos++
					continue
				}
				break
			}
		}
		if !(ep.cur().kind == tSymbol && ep.cur().text == ")") {
			return nil, ep.p.errHere("expected ')'")
		}
		ep.pos++
		return &ast.Call{Name: name, Args: args}, nil
	}
	// Phrasal call: name with a, b and c
	if ep.pos+1 < len(ep.toks) && ep.toks[ep.pos+1].kind == tKeyword && ep.toks[ep.pos+1].text == "with" {
		ep.pos += 2
		args, err := ep.parseArgListToEnd()
		if err != nil {
			return nil, err
		}
		return &ast.Call{Name: name, Args: args, Phrasal: true}, nil
	}

	ep.pos++
	return &ast.Identifier{Name: name}, nil
}

// parseExprUpToAt parses a bounded sub-expression over [from, end) without
// assuming ep.pos == from.
func (ep *exprParser) parseExprUpToAt(from, end int) (ast.Expr, error) {
	if from > end {
		return nil, ep.p.errHere("Empty expression")
	}
	toks := append([]token{}, ep.toks[from:end]...)
	toks = append(toks, token{kind: tEOF})
	sub := &exprParser{toks: toks, p: ep.p}
	e, err := sub.parseOr()
	if err != nil {
		return nil, err
	}
	if sub.cur().kind != tEOF {
		return nil, ep.p.errHere("unexpected token in builtin argument")
	}
	return e, nil
}

// tryParseErrorLit parses "error of type T with message M" starting at
// ep.pos (already confirmed to begin with "error of type"); it returns
// the new token position to resume from.
func (ep *exprParser) tryParseErrorLit() (*ast.ErrorLit, int, bool) {
	pos := ep.pos + 3 // consumed "error", "of", "type"
	if pos >= len(ep.toks) || ep.toks[pos].kind != tIdent {
		return nil, 0, false
	}
	typeName := ep.toks[pos].text
	pos++
	if pos >= len(ep.toks) || !(ep.toks[pos].kind == tKeyword && ep.toks[pos].text == "with") {
		return nil, 0, false
	}
	pos++
	if pos >= len(ep.toks) || !(ep.toks[pos].kind == tIdent && strings.EqualFold(ep.toks[pos].text, "message")) {
		return nil, 0, false
	}
	pos++
	sub := &exprParser{toks: append(append([]token{}, ep.toks[pos:]...)), p: ep.p}
	msg, err := sub.parseOr()
	if err != nil {
		return nil, 0, false
	}
	return &ast.ErrorLit{Type: typeName, Message: msg}, pos + sub.pos, true
}
