package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// shorthandKeys are the term names recognized by ExpandShorthand
var shorthandKeys = []string{
	"status", "type", "title", "location", "author",
	"spots", "price", "urgent", "wishlisted", "ends_within",
}

var logicalOps = regexp.MustCompile(`\b(AND|OR|NOT)\b`)

var shorthandTerm = regexp.MustCompile(`\b(` + strings.Join(shorthandKeys, "|") + `)!?:`)

// value is either a quoted string or a bare word
const shorthandValue = `(?:"([^"]*)"|([^\s()"]+))`

type shorthandRule struct {
	pattern *regexp.Regexp
	expand  func(m []string) (string, error)
}

func quotedOrBare(m []string, quoted, bare int) string {
	if m[quoted] != "" {
		return m[quoted]
	}
	return m[bare]
}

func negate(bang, expr string) string {
	if bang == "!" {
		return "not (" + expr + ")"
	}
	return expr
}

func normalizeOp(op string) string {
	if op == "=" {
		return "=="
	}
	return op
}

// shorthandRules are applied in order
var shorthandRules = []shorthandRule{
	// status:recruiting, status!:closed
	{regexp.MustCompile(`\bstatus(!?):` + shorthandValue), func(m []string) (string, error) {
		return negate(m[1], fmt.Sprintf("lower(Status) == lower(%s)", strconv.Quote(quotedOrBare(m, 2, 3)))), nil
	}},
	// type:group
	{regexp.MustCompile(`\btype(!?):` + shorthandValue), func(m []string) (string, error) {
		return negate(m[1], fmt.Sprintf("lower(PostType) == lower(%s)", strconv.Quote(quotedOrBare(m, 2, 3)))), nil
	}},
	// title:"salt bread"
	{regexp.MustCompile(`\btitle(!?):` + shorthandValue), func(m []string) (string, error) {
		return negate(m[1], fmt.Sprintf("contains(Title, %s)", strconv.Quote(quotedOrBare(m, 2, 3)))), nil
	}},
	// location:"student hall"
	{regexp.MustCompile(`\blocation(!?):` + shorthandValue), func(m []string) (string, error) {
		return negate(m[1], fmt.Sprintf("contains(Location, %s)", strconv.Quote(quotedOrBare(m, 2, 3)))), nil
	}},
	// author:kim
	{regexp.MustCompile(`\bauthor(!?):` + shorthandValue), func(m []string) (string, error) {
		return negate(m[1], fmt.Sprintf("lower(Author) == lower(%s)", strconv.Quote(quotedOrBare(m, 2, 3)))), nil
	}},
	// spots:>=2
	{regexp.MustCompile(`\bspots:(>=|<=|>|<|=)(\d+)\b`), func(m []string) (string, error) {
		return fmt.Sprintf("SpotsLeft %s %s", normalizeOp(m[1]), m[2]), nil
	}},
	// price:<10000 compares the per-person price
	{regexp.MustCompile(`\bprice:(>=|<=|>|<|=)(\d+(?:\.\d+)?)\b`), func(m []string) (string, error) {
		return fmt.Sprintf("PerPersonPrice %s %s", normalizeOp(m[1]), m[2]), nil
	}},
	// urgent:true
	{regexp.MustCompile(`\burgent:(true|false)\b`), func(m []string) (string, error) {
		return "IsUrgent == " + m[1], nil
	}},
	// wishlisted:true
	{regexp.MustCompile(`\bwishlisted:(true|false)\b`), func(m []string) (string, error) {
		return "Wishlisted == " + m[1], nil
	}},
	// ends_within:3d or ends_within:12h
	{regexp.MustCompile(`\bends_within:(\d+)([dh]?)\b`), func(m []string) (string, error) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", err
		}
		hours := n * 24
		if m[2] == "h" {
			hours = n
		}
		return fmt.Sprintf("(hoursUntil(EndDate) > 0 and hoursUntil(EndDate) <= %d)", hours), nil
	}},
}

// IsShorthand reports whether a filter uses key:value terms
func IsShorthand(filter string) bool {
	return shorthandTerm.MatchString(filter)
}

// ExpandShorthand converts key:value terms into an expr expression. Terms can
// be combined with and/or/not and parentheses; AND, OR and NOT are accepted too.
func ExpandShorthand(filter string) (string, error) {
	if strings.TrimSpace(filter) == "" {
		return "", nil
	}

	out := logicalOps.ReplaceAllStringFunc(filter, strings.ToLower)

	for _, rule := range shorthandRules {
		var ruleErr error
		out = rule.pattern.ReplaceAllStringFunc(out, func(match string) string {
			expanded, err := rule.expand(rule.pattern.FindStringSubmatch(match))
			if err != nil && ruleErr == nil {
				ruleErr = err
			}
			return expanded
		})
		if ruleErr != nil {
			return "", ruleErr
		}
	}

	if loc := shorthandTerm.FindStringIndex(out); loc != nil {
		return "", fmt.Errorf("unrecognized term near %q", out[loc[0]:])
	}
	return out, nil
}
