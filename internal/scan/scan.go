// Package scan implements the adapter framework for codebase scans.
// Each adapter targets one backend framework and turns a source tree into
// findings plus idea seeds. Adapters are registered in a Registry and
// selected by framework name or by auto-detection.
package scan

import (
	"context"

	"github.com/alfredjeanlab/forge/internal/model"
)

// IdeaSeed is a suggestion shaped for the queue executor, which turns seeds
// into full Idea records.
type IdeaSeed struct {
	Title   string
	Summary string
	Effort  int
	Impact  int
}

// Result is the outcome of a single adapter run.
type Result struct {
	Findings []*model.Finding
	Ideas    []IdeaSeed
}

// Adapter scans a source tree for one framework.
type Adapter interface {
	// Framework returns the framework this adapter targets.
	Framework() model.Framework

	// Detect reports whether the tree at root looks like this adapter's
	// framework. Detection must be cheap; it is called on every adapter
	// in registration order until one claims the tree.
	Detect(root string) (bool, error)

	// Scan walks the tree and produces findings for the given scan type.
	// Scan types the adapter has no specific support for yield an empty
	// result, not an error.
	Scan(ctx context.Context, root string, typ model.ScanType) (*Result, error)
}

// addFinding appends a finding stamped with the adapter's framework.
func (r *Result) addFinding(adapter model.Framework, kind, file string, line int, symbol, detail string) {
	r.Findings = append(r.Findings, &model.Finding{
		Adapter: adapter,
		Kind:    kind,
		File:    file,
		Line:    line,
		Symbol:  symbol,
		Detail:  detail,
	})
}

// addSeed appends an idea seed.
func (r *Result) addSeed(title, summary string, effort, impact int) {
	r.Ideas = append(r.Ideas, IdeaSeed{Title: title, Summary: summary, Effort: effort, Impact: impact})
}
