// Package grading derives the correctness flag of a recorded answer.
package grading

// Func decides whether a submitted answer matches the stored correct answer.
type Func func(submitted, correct string) bool

// ExactMatch is the production grader: byte-exact comparison, no trimming or
// case folding. A submission of " True" against "True" is wrong.
func ExactMatch(submitted, correct string) bool {
	return submitted == correct
}
