package scan

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/forge/internal/model"
)

// GenericAdapter is the fallback for trees no framework adapter claims.
// It supports the census and todo scan types; the framework-specific types
// yield empty results.
type GenericAdapter struct{}

func NewGenericAdapter() *GenericAdapter { return &GenericAdapter{} }

func (a *GenericAdapter) Framework() model.Framework { return model.FrameworkGeneric }

// Detect always claims the tree; register this adapter last.
func (a *GenericAdapter) Detect(root string) (bool, error) {
	return true, nil
}

func (a *GenericAdapter) Scan(ctx context.Context, root string, typ model.ScanType) (*Result, error) {
	res := &Result{}
	var err error
	switch typ {
	case model.ScanTodo:
		err = scanTodos(ctx, res, a.Framework(), root, nil)
		seedTodoBurndown(res, len(res.Findings))
	case model.ScanCensus:
		err = scanCensus(ctx, res, a.Framework(), root)
	}
	if err != nil {
		return nil, fmt.Errorf("generic %s scan: %w", typ, err)
	}
	return res, nil
}
