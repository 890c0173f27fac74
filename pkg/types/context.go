package types

// SyncContext is threaded through the transform pipeline for one unit
// of content headed to one destination. Content is reassigned per
// stage; everything else is fixed for the unit.
type SyncContext struct {
	Rule *Rule

	// Agent is the resolved consumer id for this destination.
	Agent string

	// DestPath is the resolved destination, absolute.
	DestPath string

	// ProjectRoot is the absolute project root the run operates in.
	ProjectRoot string

	// Content is the accumulated content buffer.
	Content string
}
