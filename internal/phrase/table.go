// Package phrase catalogs multi-word keywords of the surface syntax
// (§4.1). The parser takes its phrasal builtins and some block keywords
// from here; comparison and arithmetic phrases and most statement
// keywords are written out separately in internal/parser (token.go's
// keyword lists and parser.go's statement prefixes).
package phrase

import "strings"

// Entry is one recognized phrase: its canonical surface text and the
// symbolic shorthand it is equivalent to, if any.
type Entry struct {
	Text    string
	Symbol  string // "" if the phrase has no symbolic equivalent
	Builtin string // canonical internal name, for Builtin/Compare/Binary tags
}

// Comparisons is ordered longest-first so a longest-match scan over it
// picks "is greater than or equal to" before "is greater than" before "is".
// The parser does not scan it: internal/parser/token.go keeps its own
// longest-first keyword list.
var Comparisons = []Entry{
	{Text: "is greater than or equal to", Symbol: ">=", Builtin: "ge"},
	{Text: "is less than or equal to", Symbol: "<=", Builtin: "le"},
	{Text: "is not equal to", Symbol: "!=", Builtin: "ne"},
	{Text: "is greater than", Symbol: ">", Builtin: "gt"},
	{Text: "is less than", Symbol: "<", Builtin: "lt"},
	{Text: "is equal to", Symbol: "==", Builtin: "eq"},
	{Text: ">=", Symbol: ">=", Builtin: "ge"},
	{Text: "<=", Symbol: "<=", Builtin: "le"},
	{Text: "!=", Symbol: "!=", Builtin: "ne"},
	{Text: "==", Symbol: "==", Builtin: "eq"},
	{Text: "is", Symbol: "=", Builtin: "eq"},
	{Text: ">", Symbol: ">", Builtin: "gt"},
	{Text: "<", Symbol: "<", Builtin: "lt"},
	{Text: "=", Symbol: "=", Builtin: "eq"},
}

// Additive and multiplicative operator phrases.
var Additive = []Entry{
	{Text: "plus", Builtin: "plus"},
	{Text: "minus", Builtin: "minus"},
	{Text: "+", Builtin: "plus"},
	{Text: "-", Builtin: "minus"},
}

var Multiplicative = []Entry{
	{Text: "times", Builtin: "times"},
	{Text: "divided by", Builtin: "divided_by"},
	{Text: "*", Builtin: "times"},
	{Text: "/", Builtin: "divided_by"},
}

// Logical keywords (case-insensitive).
const (
	KeywordAnd = "and"
	KeywordOr  = "or"
	KeywordNot = "not"
)

// Block statement leading phrases.
const (
	StartProgram = "start program"
	EndProgram   = "end program"
	KeywordIf    = "if"
	KeywordOtherwise = "otherwise"
	KeywordWhile = "while"
	KeywordRepeat = "repeat"
	KeywordEnd   = "end"
	KeywordEndIf = "end if"
	KeywordEndTry = "end try"
	KeywordWrite = "write"
	KeywordAskFor = "ask for"
	KeywordSet   = "set"
	KeywordTo    = "to"
	KeywordIncrease = "increase"
	KeywordDecrease = "decrease"
	KeywordBy    = "by"
	KeywordMake  = "make"
	KeywordDefine = "define function"
	KeywordUse   = "use"
	KeywordCall  = "call"
	KeywordReturn = "return"
	KeywordImport = "import"
	KeywordFrom  = "from"
	KeywordAs    = "as"
	KeywordOf    = "of"
	KeywordExposing = "exposing"
	KeywordTry   = "try"
	KeywordIfError = "if error"
	KeywordFinally = "finally"
	KeywordThrow = "throw"
)

// Parameter-list phrases.
const (
	KeywordSetTo        = "set to"
	KeywordDefaultingTo = "defaulting to"
)

// Unary phrasal builtins: `<phrase> <expr>`.
var UnaryPrefixBuiltins = map[string]string{
	"count of":       "count",
	"total of":       "total",
	"sum of":         "total",
	"min of":         "min",
	"max of":         "max",
	"abs of":         "abs",
	"round of":       "round",
	"floor of":       "floor",
	"ceil of":        "ceil",
	"reverse of":     "reverse",
	"first in":       "first",
	"last in":        "last",
	"make uppercase": "uppercase",
	"make lowercase": "lowercase",
}

// UnarySuffixBuiltins: `trim spaces from <expr>`.
var UnarySuffixBuiltins = map[string]string{
	"trim spaces from": "trim",
}

// Binary phrasal builtins: `<phrase1> <a> <phrase2> <b>`.
type BinaryForm struct {
	Lead, Mid string
	Builtin   string
}

var BinaryBuiltins = []BinaryForm{
	{Lead: "join", Mid: "with", Builtin: "join"},
	{Lead: "split", Mid: "by", Builtin: "split"},
	{Lead: "contains", Mid: "in", Builtin: "contains"},
	{Lead: "remove", Mid: "from", Builtin: "remove"},
	{Lead: "append", Mid: "to", Builtin: "append"},
}

// Ternary phrasal builtins: `insert <x> at <i> in <l>`.
type TernaryForm struct {
	Lead, Mid1, Mid2 string
	Builtin          string
}

var TernaryBuiltins = []TernaryForm{
	{Lead: "insert", Mid1: "at", Mid2: "in", Builtin: "insert_at_in"},
}

// File/JSON phrasal forms handled specially by the parser because their
// argument shapes don't fit the generic unary/binary tables.
const (
	PhraseReadFileAt   = "read file at"
	PhraseWriteToFileAt = "write"
	PhraseFileExistsAt = "file exists at"
	PhraseParseJSONFrom = "parse json from"
	PhraseErrorOfType  = "error of type"
)

// FilePhrases3 are three-word unary-prefix builtins (file/json surface
// forms): `<phrase> <expr>`.
var FilePhrases3 = map[string]string{
	"read file at":    "read_file",
	"file exists at":  "file_exists",
	"parse json from": "parse_json",
}

// HasPrefixFold is the case-insensitive prefix match utility required by
// §4.1: returns the residual slice and true if s starts with prefix,
// ignoring case.
func HasPrefixFold(s, prefix string) (rest string, ok bool) {
	if len(s) < len(prefix) {
		return "", false
	}
	if strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return "", false
}
