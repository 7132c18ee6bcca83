package model

// MarkPolicy controls when an export run flips the exported flag on its
// candidate records.
type MarkPolicy string

const (
	// MarkBeforeDeliver flips flags before delivery. Required by delivery
	// paths that terminate the response stream (local download); on delivery
	// failure the marks stay set, giving at-least-once semantics.
	MarkBeforeDeliver MarkPolicy = "mark_before_deliver"
	// MarkAfterDeliver flips flags only on confirmed delivery success.
	MarkAfterDeliver MarkPolicy = "mark_after_deliver"
	// DoNotMark leaves flags untouched (test and preview runs).
	DoNotMark MarkPolicy = "do_not_mark"
)
