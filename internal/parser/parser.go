// Package parser turns line-structured phrase-oriented source into an
// internal/ast tree (§4.1-§4.2): a line cursor drives statement
// recognition, each statement's trailing expression text is handed to the
// token-stream expression parser in expr.go.
package parser

import (
	"strings"

	"github.com/jcorbin/pohlang/internal/ast"
	"github.com/jcorbin/pohlang/internal/lexutil"
	"github.com/jcorbin/pohlang/internal/phrase"
)

// Parser holds the raw source lines and a line cursor.
type Parser struct {
	file    string
	lines   []string
	pos     int // index of the next unconsumed line
	curLine int // 1-based line number last returned by take/peek
}

// Parse validates "Start Program"/"End Program" framing and parses the
// statement list in between.
func Parse(file, src string) (*ast.Program, error) {
	p := &Parser{file: file, lines: strings.Split(src, "\n")}
	p.skipBlank()
	first, ok := p.peek()
	if !ok || !strings.EqualFold(strings.TrimSpace(first), phrase.StartProgram) {
		return nil, p.errHere(`expected "Start Program" as the first statement`)
	}
	p.take()

	stmts, err := p.parseStmtList(exactMatcher(phrase.EndProgram))
	if err != nil {
		return nil, err
	}
	p.skipBlank()
	if _, ok := p.peek(); ok {
		return nil, p.errHere("unexpected content after \"End Program\"")
	}
	return &ast.Program{Stmts: stmts}, nil
}

// --- line cursor ---

func (p *Parser) skipBlank() {
	for p.pos < len(p.lines) {
		t := strings.TrimSpace(p.lines[p.pos])
		if t == "" || strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") {
			p.pos++
			continue
		}
		break
	}
}

func (p *Parser) peek() (string, bool) {
	p.skipBlank()
	if p.pos >= len(p.lines) {
		return "", false
	}
	return strings.TrimSpace(p.lines[p.pos]), true
}

func (p *Parser) take() (string, bool) {
	line, ok := p.peek()
	if !ok {
		return "", false
	}
	p.curLine = p.pos + 1
	p.pos++
	return line, true
}

// lineMatcher reports whether a trimmed line terminates a block.
type lineMatcher func(line string) bool

func exactMatcher(kw string) lineMatcher {
	return func(line string) bool { return strings.EqualFold(line, kw) }
}

func anyMatcher(kws ...string) lineMatcher {
	return func(line string) bool {
		for _, kw := range kws {
			if strings.EqualFold(line, kw) {
				return true
			}
		}
		return false
	}
}

// parseStmtList parses statements until a line matches one of the given
// terminators (the terminator line itself is consumed but not included).
func (p *Parser) parseStmtList(terminators ...lineMatcher) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		line, ok := p.peek()
		if !ok {
			return nil, p.errHere("unexpected end of input; missing block terminator")
		}
		for _, m := range terminators {
			if m(line) {
				p.take()
				return stmts, nil
			}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// stmtLeadWords are statement-leading keywords consulted when splitting a
// "Make name with params" header from a trailing inline statement (§4.2
// scenario 4). "set" is deliberately excluded: it would collide with a
// parameter default's own "set to" clause.
var stmtLeadWords = []string{"write", "return", "use", "call", "if", "while", "repeat", "throw", "ask for"}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	line, _ := p.take()

	switch {
	case hasFold(line, "if "):
		return p.parseIf(line)
	case hasFold(line, "while "):
		return p.parseWhile(line)
	case hasFold(line, "repeat "):
		return p.parseRepeat(line)
	case hasFold(line, "try"):
		return p.parseTry(line)
	case hasFold(line, "throw "):
		return p.parseThrow(line)
	case hasFold(line, "ask for "):
		return p.parseAskFor(line)
	case hasFold(line, "increase "):
		return p.parseIncreaseDecrease(line, true)
	case hasFold(line, "decrease "):
		return p.parseIncreaseDecrease(line, false)
	case hasFold(line, "set "):
		return p.parseSet(line)
	case hasFold(line, "define function "):
		return p.parseDefineFunction(line)
	case hasFold(line, "make "):
		return p.parseMakeFuncDef(line)
	case hasFold(line, "write "):
		return p.parseWrite(line)
	case hasFold(line, "use "):
		return p.parseUse(line)
	case hasFold(line, "call "):
		return p.parseCall(line)
	case hasFold(line, "return"):
		return p.parseReturn(line)
	case hasFold(line, "import "):
		return p.parseImport(line)
	}
	return nil, p.errHere("unrecognized statement: %q", line)
}

func hasFold(s, prefix string) bool {
	_, ok := phrase.HasPrefixFold(s, prefix)
	return ok
}

// findTopLevelKeyword locates the first top-level (outside quotes/brackets)
// occurrence of a bare keyword in s, matched case-insensitively at a word
// boundary.
func findTopLevelKeyword(s, kw string) (idx int, ok bool) {
	var st struct {
		inQuote bool
		depth   int
	}
	low := strings.ToLower(s)
	lkw := strings.ToLower(kw)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			st.inQuote = !st.inQuote
		case st.inQuote:
		case c == '(' || c == '[' || c == '{':
			st.depth++
		case c == ')' || c == ']' || c == '}':
			if st.depth > 0 {
				st.depth--
			}
		}
		if st.inQuote || st.depth != 0 {
			continue
		}
		if strings.HasPrefix(low[i:], lkw) {
			before := i == 0 || !isWordChar(s[i-1])
			after := i+len(lkw) >= len(s) || !isWordChar(s[i+len(lkw)])
			if before && after {
				return i, true
			}
		}
	}
	return -1, false
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// --- Write / WriteToFile ---

func (p *Parser) parseWrite(line string) (ast.Stmt, error) {
	rest, _ := phrase.HasPrefixFold(line, "write ")
	if idx, ok := findTopLevelKeyword(rest, "to file at"); ok {
		content := strings.TrimSpace(rest[:idx])
		pathStr := strings.TrimSpace(rest[idx+len("to file at"):])
		c, err := p.parseExprString(content)
		if err != nil {
			return nil, err
		}
		path, err := p.parseExprString(pathStr)
		if err != nil {
			return nil, err
		}
		return &ast.WriteToFile{Content: c, Path: path}, nil
	}
	v, err := p.parseExprString(rest)
	if err != nil {
		return nil, err
	}
	return &ast.Write{Value: v}, nil
}

// --- AskFor ---

func (p *Parser) parseAskFor(line string) (ast.Stmt, error) {
	rest, _ := phrase.HasPrefixFold(line, "ask for ")
	name := strings.TrimSpace(rest)
	if name == "" {
		return nil, p.errHere("\"Ask for\" needs a variable name")
	}
	return &ast.AskFor{Name: name}, nil
}

// --- Set / Increase / Decrease ---

func (p *Parser) parseSet(line string) (ast.Stmt, error) {
	rest, _ := phrase.HasPrefixFold(line, "set ")
	idx, ok := findTopLevelKeyword(rest, "to")
	if !ok {
		return nil, p.errHere("missing 'to' in Set statement")
	}
	name := strings.TrimSpace(rest[:idx])
	valStr := strings.TrimSpace(rest[idx+len("to"):])
	v, err := p.parseExprString(valStr)
	if err != nil {
		return nil, err
	}
	return &ast.Set{Name: name, Value: v}, nil
}

func (p *Parser) parseIncreaseDecrease(line string, inc bool) (ast.Stmt, error) {
	lead := "increase "
	if !inc {
		lead = "decrease "
	}
	rest, _ := phrase.HasPrefixFold(line, lead)
	idx, ok := findTopLevelKeyword(rest, "by")
	if !ok {
		return nil, p.errHere("missing 'by' in %s statement", strings.TrimSpace(lead))
	}
	name := strings.TrimSpace(rest[:idx])
	amtStr := strings.TrimSpace(rest[idx+len("by"):])
	amt, err := p.parseExprString(amtStr)
	if err != nil {
		return nil, err
	}
	op := ast.OpAdd
	if !inc {
		op = ast.OpSub
	}
	return &ast.Set{Name: name, Value: &ast.Binary{Op: op, Left: &ast.Identifier{Name: name}, Right: amt}}, nil
}

// --- If ---

func (p *Parser) parseIf(line string) (ast.Stmt, error) {
	rest, _ := phrase.HasPrefixFold(line, "if ")
	if idx, ok := findTopLevelKeyword(rest, "write"); ok {
		condStr := strings.TrimSpace(rest[:idx])
		cond, err := p.parseExprString(condStr)
		if err != nil {
			return nil, err
		}
		thenPart := rest[idx+len("write"):]
		var elsePart string
		hasElse := false
		if oidx, ok := findTopLevelKeyword(thenPart, "otherwise write"); ok {
			elsePart = thenPart[oidx+len("otherwise write"):]
			thenPart = thenPart[:oidx]
			hasElse = true
		}
		thenExpr, err := p.parseExprString(strings.TrimSpace(thenPart))
		if err != nil {
			return nil, err
		}
		var elseExpr ast.Expr
		if hasElse {
			elseExpr, err = p.parseExprString(strings.TrimSpace(elsePart))
			if err != nil {
				return nil, err
			}
		}
		return &ast.IfInline{Cond: cond, Then: thenExpr, Else: elseExpr}, nil
	}

	cond, err := p.parseExprString(strings.TrimSpace(rest))
	if err != nil {
		return nil, err
	}
	thenStmts, err := p.parseStmtList(
		anyMatcher(phrase.KeywordOtherwise, phrase.KeywordEndIf, phrase.KeywordEnd),
	)
	if err != nil {
		return nil, err
	}
	// parseStmtList doesn't tell us which terminator matched; re-derive by
	// checking the line just consumed.
	lastLine := strings.TrimSpace(p.lines[p.pos-1])
	var elseStmts []ast.Stmt
	if strings.EqualFold(lastLine, phrase.KeywordOtherwise) {
		elseStmts, err = p.parseStmtList(anyMatcher(phrase.KeywordEndIf, phrase.KeywordEnd))
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfBlock{Cond: cond, Then: thenStmts, Else: elseStmts}, nil
}

// --- While / Repeat ---

func (p *Parser) parseWhile(line string) (ast.Stmt, error) {
	rest, _ := phrase.HasPrefixFold(line, "while ")
	cond, err := p.parseExprString(strings.TrimSpace(rest))
	if err != nil {
		return nil, err
	}
	body, err := p.parseStmtList(anyMatcher(phrase.KeywordEnd))
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

func (p *Parser) parseRepeat(line string) (ast.Stmt, error) {
	// surface form: "Repeat <count> times"
	rest, _ := phrase.HasPrefixFold(line, "repeat ")
	countStr := strings.TrimSpace(rest)
	if idx, ok := findTopLevelKeyword(countStr, "times"); ok {
		countStr = strings.TrimSpace(countStr[:idx])
	}
	count, err := p.parseExprString(countStr)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStmtList(anyMatcher(phrase.KeywordEnd))
	if err != nil {
		return nil, err
	}
	return &ast.Repeat{Count: count, Body: stmts}, nil
}

// --- Try / Catch / Finally ---

func (p *Parser) parseTry(string) (ast.Stmt, error) {
	tryStmts, err := p.parseStmtList(func(line string) bool {
		return isIfErrorHeader(line) || strings.EqualFold(line, phrase.KeywordFinally) ||
			strings.EqualFold(line, phrase.KeywordEndTry) || strings.EqualFold(line, phrase.KeywordEnd)
	})
	if err != nil {
		return nil, err
	}
	lastLine := strings.TrimSpace(p.lines[p.pos-1])

	var catches []ast.CatchClause
	for isIfErrorHeader(lastLine) {
		typ, varName := parseCatchHeader(lastLine)
		body, err := p.parseStmtList(func(line string) bool {
			return isIfErrorHeader(line) || strings.EqualFold(line, phrase.KeywordFinally) ||
				strings.EqualFold(line, phrase.KeywordEndTry) || strings.EqualFold(line, phrase.KeywordEnd)
		})
		if err != nil {
			return nil, err
		}
		catches = append(catches, ast.CatchClause{Type: typ, Var: varName, Body: body})
		lastLine = strings.TrimSpace(p.lines[p.pos-1])
	}

	var finallyStmts []ast.Stmt
	if strings.EqualFold(lastLine, phrase.KeywordFinally) {
		finallyStmts, err = p.parseStmtList(anyMatcher(phrase.KeywordEndTry, phrase.KeywordEnd))
		if err != nil {
			return nil, err
		}
	}
	return &ast.TryCatch{Try: tryStmts, Catches: catches, Finally: finallyStmts}, nil
}

func isIfErrorHeader(line string) bool {
	return hasFold(line, "if error")
}

// parseCatchHeader extracts the optional type and bound variable from an
// "If Error [of type T] [as v]" header line.
func parseCatchHeader(line string) (typ, varName string) {
	rest, _ := phrase.HasPrefixFold(line, "if error")
	rest = strings.TrimSpace(rest)
	if r, ok := phrase.HasPrefixFold(rest, "of type "); ok {
		fields := strings.Fields(r)
		if len(fields) > 0 {
			typ = fields[0]
			r = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(r), typ))
		}
		rest = r
	}
	if r, ok := phrase.HasPrefixFold(rest, "as "); ok {
		varName = strings.TrimSpace(r)
	}
	return typ, varName
}

// --- Throw ---

func (p *Parser) parseThrow(line string) (ast.Stmt, error) {
	rest, _ := phrase.HasPrefixFold(line, "throw ")
	v, err := p.parseExprString(strings.TrimSpace(rest))
	if err != nil {
		return nil, err
	}
	return &ast.Throw{Value: v}, nil
}

// --- Return ---

func (p *Parser) parseReturn(line string) (ast.Stmt, error) {
	rest, ok := phrase.HasPrefixFold(line, "return ")
	if !ok {
		return &ast.Return{}, nil
	}
	v, err := p.parseExprString(strings.TrimSpace(rest))
	if err != nil {
		return nil, err
	}
	return &ast.Return{Value: v}, nil
}

// --- Use / Call ---

func (p *Parser) parseUse(line string) (ast.Stmt, error) {
	rest, _ := phrase.HasPrefixFold(line, "use ")
	name, args, err := p.parseCallTail(rest)
	if err != nil {
		return nil, err
	}
	return &ast.Use{Name: name, Args: args}, nil
}

func (p *Parser) parseCall(line string) (ast.Stmt, error) {
	rest, _ := phrase.HasPrefixFold(line, "call ")
	name, args, err := p.parseCallTail(rest)
	if err != nil {
		return nil, err
	}
	return &ast.Use{Name: name, Args: args}, nil
}

func (p *Parser) parseCallTail(rest string) (name string, args []ast.Expr, err error) {
	rest = strings.TrimSpace(rest)
	if idx, ok := findTopLevelKeyword(rest, "with"); ok {
		name = strings.TrimSpace(rest[:idx])
		argsStr := strings.TrimSpace(rest[idx+len("with"):])
		parts := lexutil.TopLevelSplitAll(argsStr, ",")
		var flat []string
		for _, part := range parts {
			if aidx, ok := findTopLevelKeyword(part, "and"); ok {
				flat = append(flat, part[:aidx], part[aidx+len("and"):])
			} else {
				flat = append(flat, part)
			}
		}
		for _, a := range flat {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			e, err := p.parseExprString(a)
			if err != nil {
				return "", nil, err
			}
			args = append(args, e)
		}
		return name, args, nil
	}
	return rest, nil, nil
}

// --- Import ---

func (p *Parser) parseImport(line string) (ast.Stmt, error) {
	rest, _ := phrase.HasPrefixFold(line, "import ")
	rest = strings.TrimSpace(rest)
	if idx, ok := findTopLevelKeyword(rest, "from"); ok {
		name := strings.TrimSpace(rest[:idx])
		tail := strings.TrimSpace(rest[idx+len("from"):])
		alias := ""
		var exposing []string
		if aidx, ok := findTopLevelKeyword(tail, "exposing"); ok {
			aliasPart := strings.TrimSpace(tail[:aidx])
			exposePart := strings.TrimSpace(tail[aidx+len("exposing"):])
			if r, ok := phrase.HasPrefixFold(aliasPart, "as "); ok {
				alias = strings.TrimSpace(r)
			}
			for _, n := range lexutil.TopLevelSplitAll(exposePart, ",") {
				n = strings.TrimSpace(n)
				if n != "" {
					exposing = append(exposing, n)
				}
			}
		} else if r, ok := phrase.HasPrefixFold(tail, "as "); ok {
			alias = strings.TrimSpace(r)
		}
		return &ast.ImportSystem{Name: name, Alias: alias, Exposing: exposing}, nil
	}
	path := strings.Trim(rest, `"`)
	return &ast.ImportLocal{Path: path}, nil
}

// --- Function definitions ---

// parseDefineFunction handles the inline expr-body form: "Define function
// name [with parameter p1 [defaulting to/set to expr], ...] as expr"
// (§4.2 scenario 2's default-parameter variant).
func (p *Parser) parseDefineFunction(line string) (ast.Stmt, error) {
	rest, _ := phrase.HasPrefixFold(line, "define function ")
	rest = strings.TrimSpace(rest)

	var name, tail string
	if idx, ok := findTopLevelKeyword(rest, "with parameters"); ok {
		name = strings.TrimSpace(rest[:idx])
		tail = strings.TrimSpace(rest[idx+len("with parameters"):])
	} else if idx, ok := findTopLevelKeyword(rest, "with parameter"); ok {
		name = strings.TrimSpace(rest[:idx])
		tail = strings.TrimSpace(rest[idx+len("with parameter"):])
	} else {
		name = rest
		tail = rest
	}

	asIdx, ok := findTopLevelKeyword(tail, "as")
	if !ok {
		return nil, p.errHere("missing 'as' in function definition")
	}
	paramsStr := strings.TrimSpace(tail[:asIdx])
	exprStr := strings.TrimSpace(tail[asIdx+len("as"):])
	if tail == rest {
		name = paramsStr
		paramsStr = ""
	}

	params, err := p.parseParamList(paramsStr)
	if err != nil {
		return nil, err
	}
	body, err := p.parseExprString(exprStr)
	if err != nil {
		return nil, err
	}
	return &ast.FuncDef{Name: name, Params: params, Body: &ast.ExprBody{Expr: body}}, nil
}

// parseMakeFuncDef handles "Make name with params" (block body follows on
// subsequent lines until End) and "Make name with params <inline-stmt>"
// (single-line body, §4.2 scenario 4).
func (p *Parser) parseMakeFuncDef(line string) (ast.Stmt, error) {
	rest, _ := phrase.HasPrefixFold(line, "make ")
	rest = strings.TrimSpace(rest)
	idx, ok := findTopLevelKeyword(rest, "with")
	if !ok {
		return nil, p.errHere("missing 'with' in function definition")
	}
	name := strings.TrimSpace(rest[:idx])
	paramsAndTail := strings.TrimSpace(rest[idx+len("with"):])

	paramsStr, inlineStmt := splitParamsFromTrailingStmt(paramsAndTail)
	params, err := p.parseParamList(paramsStr)
	if err != nil {
		return nil, err
	}

	if inlineStmt != "" {
		stmt, err := p.parseInlineStatementText(inlineStmt)
		if err != nil {
			return nil, err
		}
		if w, ok := stmt.(*ast.Write); ok {
			return &ast.FuncDef{Name: name, Params: params, Body: &ast.ExprBody{Expr: w.Value}}, nil
		}
		return &ast.FuncDef{Name: name, Params: params, Body: &ast.BlockBody{Stmts: []ast.Stmt{stmt}}}, nil
	}

	body, err := p.parseStmtList(anyMatcher(phrase.KeywordEnd))
	if err != nil {
		return nil, err
	}
	return &ast.FuncDef{Name: name, Params: params, Body: &ast.BlockBody{Stmts: body}}, nil
}

// parseInlineStatementText parses a single statement given as raw text
// rather than consumed from the line cursor (used for Make's trailing
// inline-body form).
func (p *Parser) parseInlineStatementText(text string) (ast.Stmt, error) {
	saved := p.lines
	savedPos := p.pos
	savedLine := p.curLine
	p.lines = []string{text}
	p.pos = 0
	stmt, err := p.parseStatement()
	p.lines = saved
	p.pos = savedPos
	p.curLine = savedLine
	return stmt, err
}

// splitParamsFromTrailingStmt finds the first top-level occurrence of a
// statement-leading keyword in s and splits there; if none is found, all
// of s is the parameter list.
func splitParamsFromTrailingStmt(s string) (params, stmt string) {
	best := -1
	for _, w := range stmtLeadWords {
		if idx, ok := findTopLevelKeyword(s, w); ok {
			if best == -1 || idx < best {
				best = idx
			}
		}
	}
	if best == -1 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:best]), strings.TrimSpace(s[best:])
}

// parseParamList parses a comma/"and"-separated parameter list, each with
// an optional "set to"/"defaulting to" default expression.
func (p *Parser) parseParamList(s string) ([]ast.Param, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var params []ast.Param
	for _, piece := range splitCommaAnd(s) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		name := piece
		var def ast.Expr
		if idx, ok := findTopLevelKeyword(piece, "defaulting to"); ok {
			name = strings.TrimSpace(piece[:idx])
			defStr := strings.TrimSpace(piece[idx+len("defaulting to"):])
			e, err := p.parseExprString(defStr)
			if err != nil {
				return nil, err
			}
			def = e
		} else if idx, ok := findTopLevelKeyword(piece, "set to"); ok {
			name = strings.TrimSpace(piece[:idx])
			defStr := strings.TrimSpace(piece[idx+len("set to"):])
			e, err := p.parseExprString(defStr)
			if err != nil {
				return nil, err
			}
			def = e
		}
		params = append(params, ast.Param{Name: name, Default: def})
	}
	return params, nil
}

// splitCommaAnd splits a parameter or argument list on top-level commas
// and "and".
func splitCommaAnd(s string) []string {
	var out []string
	for _, commaPart := range lexutil.TopLevelSplitAll(s, ",") {
		if idx, ok := findTopLevelKeyword(commaPart, "and"); ok {
			out = append(out, commaPart[:idx], commaPart[idx+len("and"):])
		} else {
			out = append(out, commaPart)
		}
	}
	return out
}
