// Package kusto extracts table references from KQL query text.
//
// Extraction is over-inclusive: a false positive only blocks a tier
// recommendation, while a missed reference could downgrade a table an
// alert rule depends on.
package kusto

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Skip extraction beyond this size; alert rules and dashboard tiles are
// tiny, anything larger is not a query.
const maxQueryLength = 100000

// Identifiers shorter than this are treated as aliases or noise.
const minNameLength = 3

// A recognizer finds candidate identifiers in one syntactic position.
// Rules run in order and their matches are unioned; each can be tested,
// added, or removed without touching the others.
type recognizer struct {
	name string
	find func(query string) []string
}

var recognizers = []recognizer{
	{name: "pipeline_head", find: findPipelineHeads},
	{name: "union_operands", find: findUnionOperands},
	{name: "table_function", find: findTableFunctionArgs},
	{name: "join_operands", find: findJoinOperands},
}

// Clause keywords and operators the recognizers can catch in malformed or
// clever queries. Checked case-insensitively after a match.
var reservedWords = map[string]bool{
	"where": true, "summarize": true, "project": true, "extend": true,
	"count": true, "take": true, "top": true, "sort": true, "order": true,
	"by": true, "on": true, "let": true, "render": true, "evaluate": true,
	"print": true, "union": true, "join": true, "datatable": true,
	"range": true, "search": true, "find": true, "parse": true,
	"distinct": true, "limit": true, "mv-expand": true, "mv-apply": true,
	"serialize": true, "invoke": true, "lookup": true, "facet": true,
	"fork": true, "consume": true, "getschema": true, "sample": true,
	"externaldata": true, "materialize": true, "toscalar": true,
	"ago": true, "between": true, "case": true, "iff": true, "bin": true,
	"strcat": true, "and": true, "or": true, "not": true, "in": true,
	"has": true, "contains": true, "startswith": true, "endswith": true,
	"matches": true, "asc": true, "desc": true, "true": true, "false": true,
	"kind": true, "withsource": true, "isfuzzy": true, "hint": true,
	"table": true, "database": true, "cluster": true, "workspace": true,
	"set": true, "alias": true, "declare": true, "pattern": true,
	"restrict": true, "access": true,
}

// Operators that may directly follow a pipeline head without a pipe in
// sloppy but still recognizable queries.
var clauseKeywords = map[string]bool{
	"where": true, "summarize": true, "project": true, "extend": true,
	"take": true, "top": true, "limit": true, "sort": true, "order": true,
	"count": true, "distinct": true, "parse": true, "render": true,
	"getschema": true, "join": true, "union": true, "evaluate": true,
	"invoke": true, "serialize": true, "sample": true, "search": true,
	"mv-expand": true, "mv-apply": true, "lookup": true,
}

var (
	identifierPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\b`)
	unionPattern      = regexp.MustCompile(`(?i)\bunion\b((?:\s+(?:kind|withsource|isfuzzy)\s*=\s*[A-Za-z0-9_'"]+)*)\s+\(?\s*([A-Za-z_][A-Za-z0-9_]*(?:\s*,\s*\(?\s*[A-Za-z_][A-Za-z0-9_]*)*)`)
	tableCallPattern  = regexp.MustCompile(`(?i)\btable\s*\(\s*['"]([A-Za-z_][A-Za-z0-9_]*)['"]\s*\)`)
	joinPattern       = regexp.MustCompile(`(?i)\bjoin\s+(?:kind\s*=\s*[A-Za-z]+\s+)?\(?\s*([A-Za-z_][A-Za-z0-9_]*)`)
)

// ExtractTableNames returns the distinct table identifiers referenced in
// one query text, sorted by name. It never fails: empty, binary, or
// non-query input yields an empty result.
func ExtractTableNames(query string) (names []string) {
	// Alert texts are user-edited portal queries; treat a parser panic as
	// "no references found" rather than aborting the run.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered from panic during table extraction", slog.Any("panic", r))
			names = nil
		}
	}()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if len(query) > maxQueryLength {
		query = query[:maxQueryLength]
	}

	seen := make(map[string]bool)
	for _, rule := range recognizers {
		for _, match := range rule.find(query) {
			if isTableName(match) {
				seen[match] = true
			}
		}
	}

	names = make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExtractAll merges the references of many query texts into one sorted
// list.
func ExtractAll(queries []string) []string {
	seen := make(map[string]bool)
	for _, q := range queries {
		for _, name := range ExtractTableNames(q) {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isTableName filters recognizer matches: long enough, not a reserved
// word, and capitalized the way Log Analytics tables are.
func isTableName(name string) bool {
	if len(name) < minNameLength {
		return false
	}
	if reservedWords[strings.ToLower(name)] {
		return false
	}
	for _, first := range name {
		return unicode.IsUpper(first)
	}
	return false
}

// findPipelineHeads matches rule 1: an identifier at the start of a
// statement or right after a pipe, itself followed by a pipe, a clause
// keyword, or the end of the statement.
func findPipelineHeads(query string) []string {
	var out []string
	for _, stmt := range splitStatements(query) {
		for _, segment := range strings.Split(stmt, "|") {
			segment = strings.TrimSpace(segment)
			m := identifierPattern.FindStringSubmatch(segment)
			if m == nil {
				continue
			}
			rest := strings.TrimSpace(segment[len(m[1]):])
			if rest == "" || clauseKeywords[firstWord(rest)] {
				out = append(out, m[1])
			}
		}
	}
	return out
}

// findUnionOperands matches rule 2: the comma-separated identifier list
// after a union operator, skipping its modifiers.
func findUnionOperands(query string) []string {
	var out []string
	for _, m := range unionPattern.FindAllStringSubmatch(query, -1) {
		for _, part := range strings.Split(m[2], ",") {
			part = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "("))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// findTableFunctionArgs matches rule 3: explicit table('X') references.
func findTableFunctionArgs(query string) []string {
	var out []string
	for _, m := range tableCallPattern.FindAllStringSubmatch(query, -1) {
		out = append(out, m[1])
	}
	return out
}

// findJoinOperands matches rule 4: the right-hand table of a join,
// skipping an optional kind modifier and opening parenthesis.
func findJoinOperands(query string) []string {
	var out []string
	for _, m := range joinPattern.FindAllStringSubmatch(query, -1) {
		out = append(out, m[1])
	}
	return out
}

// splitStatements breaks query text on semicolons and newlines; alert
// rules store multi-statement queries both ways.
func splitStatements(query string) []string {
	return strings.FieldsFunc(query, func(r rune) bool {
		return r == ';' || r == '\n'
	})
}

// firstWord returns the leading keyword-shaped token of s, lowercased.
func firstWord(s string) string {
	end := len(s)
	for i, r := range s {
		if !unicode.IsLetter(r) && r != '-' {
			end = i
			break
		}
	}
	return strings.ToLower(s[:end])
}
