package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/moasaja/moasaja/api"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
	now        func() time.Time
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// WithClock sets the time source used by the date helpers
func WithClock(now func() time.Time) ExprCompilerOption {
	return func(c *exprCompiler) {
		if now != nil {
			c.now = now
		}
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		now: time.Now,
	}
	c.helperFuncs = createHelperFunctions(func() time.Time { return c.now() })

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache[CompiledFilter]
	now         func() time.Time
}

// Compile compiles an expression into an executable filter. Shorthand terms
// such as status:recruiting are expanded first.
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	source := expression
	if IsShorthand(expression) {
		converted, err := ExpandShorthand(expression)
		if err != nil {
			return nil, &CompilationError{
				Expression: expression,
				Reason:     "invalid shorthand",
				Err:        err,
			}
		}
		source = converted
	}

	// compile against a sample environment so unknown fields fail here
	program, err := expr.Compile(source,
		expr.Env(createRuntimeEnvironment(api.Post{}, c.helperFuncs, c.now())),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
		now:        c.now,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against a post. Runtime errors count as no match.
func (f *exprFilter) Evaluate(post api.Post) bool {
	env := createRuntimeEnvironment(post, f.helpers, f.now())

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createHelperFunctions creates the helpers shared by every post
func createHelperFunctions(now func() time.Time) map[string]any {
	return map[string]any{
		// date helpers
		"daysUntil": func(t time.Time) int {
			if t.IsZero() {
				return 0
			}
			return int(t.Sub(now()).Hours() / 24)
		},
		"hoursUntil": func(t time.Time) float64 {
			if t.IsZero() {
				return 0
			}
			return t.Sub(now()).Hours()
		},
		"daysAgo": func(days int) time.Time {
			return now().AddDate(0, 0, -days)
		},
		"parseDate": func(s string) time.Time {
			t, err := api.ParseTime(s)
			if err != nil {
				return time.Time{}
			}
			return t.Time
		},
		"now": now,

		// string helpers
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"endsWith": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}
}

// createRuntimeEnvironment exposes a post's fields and helpers to expressions
func createRuntimeEnvironment(post api.Post, helpers map[string]any, now time.Time) map[string]any {
	env := make(map[string]any, len(helpers)+24)
	maps.Copy(env, helpers)

	env["Post"] = post
	env["isFull"] = func() bool { return post.IsFull() }
	env["isExpired"] = func() bool {
		return !post.EndDate.IsZero() && post.EndDate.Before(now)
	}

	env["Title"] = post.Title
	env["Description"] = post.Description
	env["Status"] = string(post.Status)
	env["PostType"] = post.PostType
	env["TotalPrice"] = post.TotalPrice.InexactFloat64()
	env["PerPersonPrice"] = post.PerPerson().InexactFloat64()
	env["Participants"] = post.CurrentParticipants
	env["TargetParticipants"] = post.TargetParticipants
	env["SpotsLeft"] = post.SpotsLeft()
	env["EndDate"] = post.EndDate.Time
	env["PickupAt"] = post.PickupDatetime.Time
	env["CreatedAt"] = post.CreatedAt.Time
	env["Location"] = post.PickupLocationText
	env["Author"] = post.AuthorName()
	env["IsUrgent"] = post.IsUrgent
	env["IsNew"] = post.IsNew
	env["Wishlisted"] = post.IsWishlisted

	return env
}
