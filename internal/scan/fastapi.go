package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alfredjeanlab/forge/internal/model"
)

var (
	fastapiRouteRe  = regexp.MustCompile(`@(?:app|router)\.(get|post|put|patch|delete|head|options)\(\s*['"]([^'"]+)['"]`)
	pydanticModelRe = regexp.MustCompile(`^class\s+(\w+)\s*\(([^)]*BaseModel[^)]*)\)`)
)

// FastAPIAdapter scans FastAPI projects: route decorators, pydantic models,
// and Python dependency declarations.
type FastAPIAdapter struct{}

func NewFastAPIAdapter() *FastAPIAdapter { return &FastAPIAdapter{} }

func (a *FastAPIAdapter) Framework() model.Framework { return model.FrameworkFastAPI }

// Detect claims trees declaring fastapi in requirements.txt or pyproject.toml.
func (a *FastAPIAdapter) Detect(root string) (bool, error) {
	if fileContains(filepath.Join(root, "requirements.txt"), "fastapi") {
		return true, nil
	}
	if fileContains(filepath.Join(root, "pyproject.toml"), "fastapi") {
		return true, nil
	}
	return false, nil
}

func (a *FastAPIAdapter) Scan(ctx context.Context, root string, typ model.ScanType) (*Result, error) {
	res := &Result{}
	var err error
	switch typ {
	case model.ScanRoutes:
		err = a.scanRoutes(ctx, res, root)
	case model.ScanModels:
		err = a.scanModels(ctx, res, root)
	case model.ScanDeps:
		err = scanRequirements(ctx, res, a.Framework(), root)
	case model.ScanTodo:
		err = scanTodos(ctx, res, a.Framework(), root, map[string]bool{".py": true})
		seedTodoBurndown(res, len(res.Findings))
	case model.ScanCensus:
		err = scanCensus(ctx, res, a.Framework(), root)
	}
	if err != nil {
		return nil, fmt.Errorf("fastapi %s scan: %w", typ, err)
	}
	return res, nil
}

// scanRoutes collects @app/@router verb decorators from Python files.
func (a *FastAPIAdapter) scanRoutes(ctx context.Context, res *Result, root string) error {
	err := walkFiles(ctx, root, func(rel, abs string) error {
		if filepath.Ext(rel) != ".py" {
			return nil
		}
		matches, err := grepFile(abs, fastapiRouteRe)
		if err != nil {
			return nil
		}
		for _, m := range matches {
			verb := strings.ToUpper(m.Groups[1])
			res.addFinding(a.Framework(), "route", rel, m.Line, m.Groups[2], verb)
		}
		return nil
	})
	if err != nil {
		return err
	}
	seedRouteIdeas(res, a.Framework())
	return nil
}

// scanModels collects pydantic BaseModel subclasses.
func (a *FastAPIAdapter) scanModels(ctx context.Context, res *Result, root string) error {
	err := walkFiles(ctx, root, func(rel, abs string) error {
		if filepath.Ext(rel) != ".py" {
			return nil
		}
		matches, err := grepFile(abs, pydanticModelRe)
		if err != nil {
			return nil
		}
		for _, m := range matches {
			res.addFinding(a.Framework(), "model", rel, m.Line, m.Groups[1], strings.TrimSpace(m.Groups[2]))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if n := len(res.Findings); n > 0 {
		res.addSeed(
			fmt.Sprintf("Document %d pydantic schemas in the API reference", n),
			"Pydantic models were found; surface them in generated API documentation.",
			2, 2,
		)
	}
	return nil
}
