// Package tui implements the mathtutor terminal user interface.
//
// Three panels (Scan, Solve, Ask) sit behind a tab strip. Each panel
// submits one request to the tutor service and renders the JSON reply
// into its result regions, typesetting the math it contains.
//
// Component architecture:
//
//	model.go   — root model, message routing, Init/Update/View
//	view.go    — typed binding of tabs, panels, inputs and regions
//	tabs.go    — tab activation and keyboard focus
//	submit.go  — the three submitters and their request commands
//	result.go  — response rendering and the shared failure policy
//	tokens.go  — per-submitter request tokens that drop stale replies
//	filter.go  — fuzzy filter over rendered solution steps
//	header.go  — tab strip, mouse hit-testing, footer hints
//	panels.go  — panel, region and notice rendering
//	theme.go   — centralized color + style definitions
//	helpers.go — layout helpers
package tui
