// Package filter selects posts with expr-lang expressions.
//
// Expressions see the post's fields directly (Title, Status, SpotsLeft,
// PerPersonPrice, EndDate, ...) plus helpers such as contains, daysUntil and
// isFull:
//
//	Status == "recruiting" and SpotsLeft > 0 and PerPersonPrice < 10000
//	contains(Location, "library") and daysUntil(EndDate) <= 2
//
// Shorthand terms are expanded before compiling:
//
//	status:recruiting and spots:>0 AND title:"salt bread"
package filter

var defaultCompiler = NewExprCompiler(WithCache(100))

// Compile compiles expression with a shared, cached compiler
func Compile(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}
