package task

// Category is a review risk dimension. The set is closed; per-category
// behavior (weights, thresholds, checker sets) is table lookup, never
// dynamic dispatch.
type Category string

const (
	CategoryNullSafety     Category = "null_safety"
	CategoryConcurrency    Category = "concurrency"
	CategorySecurity       Category = "security"
	CategoryBusinessIntent Category = "business_intent"
	CategoryLifecycle      Category = "lifecycle"
	CategorySyntax         Category = "syntax"
)

// Categories returns all categories in a fixed, deterministic order.
func Categories() []Category {
	return []Category{
		CategorySecurity,
		CategoryConcurrency,
		CategoryNullSafety,
		CategoryLifecycle,
		CategoryBusinessIntent,
		CategorySyntax,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryNullSafety, CategoryConcurrency, CategorySecurity,
		CategoryBusinessIntent, CategoryLifecycle, CategorySyntax:
		return true
	}
	return false
}

// categoryWeights ranks categories for planning priority. Security and
// concurrency issues outrank style-adjacent ones.
var categoryWeights = map[Category]float64{
	CategorySecurity:       1.0,
	CategoryConcurrency:    0.9,
	CategoryNullSafety:     0.8,
	CategoryLifecycle:      0.7,
	CategoryBusinessIntent: 0.6,
	CategorySyntax:         0.5,
}

// Weight returns the planning weight for a category. Unknown categories
// weigh zero and sort last.
func (c Category) Weight() float64 {
	return categoryWeights[c]
}

// Severity classifies how serious a risk is if confirmed.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// severityWeights scale planning priority by how serious a candidate
// claims to be.
var severityWeights = map[Severity]float64{
	SeverityError:   1.0,
	SeverityWarning: 0.7,
	SeverityInfo:    0.4,
}

// Weight returns the planning weight for a severity.
func (s Severity) Weight() float64 {
	return severityWeights[s]
}
