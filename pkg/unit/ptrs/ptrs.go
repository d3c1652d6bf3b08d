// Package ptrs holds one-line helpers that return a pointer to a primitive
// value, mostly for populating optional schema bounds.
package ptrs

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }
