package alert

import "math"

// equalityEpsilon is the tolerance for = and != comparisons. Metric values
// arrive as floats; exact equality would make "= 5" rules effectively dead.
const equalityEpsilon = 1e-3

type conditionFunc func(value, threshold float64) bool

// conditions dispatches per operator so the engine stays operator-agnostic.
var conditions = map[ThresholdOperator]conditionFunc{
	OpGreaterThan:    func(v, t float64) bool { return v > t },
	OpLessThan:       func(v, t float64) bool { return v < t },
	OpGreaterOrEqual: func(v, t float64) bool { return v >= t },
	OpLessOrEqual:    func(v, t float64) bool { return v <= t },
	OpEqual:          func(v, t float64) bool { return math.Abs(v-t) < equalityEpsilon },
	OpNotEqual:       func(v, t float64) bool { return math.Abs(v-t) >= equalityEpsilon },
}

// EvaluateCondition reports whether value satisfies the threshold under op.
// An unrecognized operator returns false rather than failing, so one
// malformed rule cannot abort a batch.
func EvaluateCondition(value, threshold float64, op ThresholdOperator) bool {
	fn, ok := conditions[op]
	if !ok {
		return false
	}
	return fn(value, threshold)
}
