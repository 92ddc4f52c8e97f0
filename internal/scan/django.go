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
	djangoRouteRe = regexp.MustCompile(`\b(?:path|re_path|url)\(\s*r?['"]([^'"]*)['"]`)
	djangoModelRe = regexp.MustCompile(`^class\s+(\w+)\s*\(([^)]*\bModel\b[^)]*)\)`)
	requirementRe = regexp.MustCompile(`^\s*([A-Za-z0-9._-]+)\s*(?:[=<>!~]=?\s*([^\s;#]*))?`)
)

// DjangoAdapter scans Django projects: URLconf route tables, ORM models,
// and requirements files.
type DjangoAdapter struct{}

func NewDjangoAdapter() *DjangoAdapter { return &DjangoAdapter{} }

func (a *DjangoAdapter) Framework() model.Framework { return model.FrameworkDjango }

// Detect claims trees with a manage.py at the root.
func (a *DjangoAdapter) Detect(root string) (bool, error) {
	return fileExists(filepath.Join(root, "manage.py")), nil
}

func (a *DjangoAdapter) Scan(ctx context.Context, root string, typ model.ScanType) (*Result, error) {
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
		return nil, fmt.Errorf("django %s scan: %w", typ, err)
	}
	return res, nil
}

// scanRoutes collects path()/re_path()/url() registrations from urls.py files.
func (a *DjangoAdapter) scanRoutes(ctx context.Context, res *Result, root string) error {
	err := walkFiles(ctx, root, func(rel, abs string) error {
		if filepath.Base(rel) != "urls.py" {
			return nil
		}
		matches, err := grepFile(abs, djangoRouteRe)
		if err != nil {
			return nil
		}
		for _, m := range matches {
			res.addFinding(a.Framework(), "route", rel, m.Line, m.Groups[1], "")
		}
		return nil
	})
	if err != nil {
		return err
	}
	seedRouteIdeas(res, a.Framework())
	return nil
}

// scanModels collects ORM model classes from models.py files.
func (a *DjangoAdapter) scanModels(ctx context.Context, res *Result, root string) error {
	err := walkFiles(ctx, root, func(rel, abs string) error {
		if filepath.Base(rel) != "models.py" {
			return nil
		}
		matches, err := grepFile(abs, djangoModelRe)
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
			fmt.Sprintf("Review validation coverage for %d Django models", n),
			"Scan found ORM model classes; check that each has field validation and an admin registration.",
			3, 3,
		)
	}
	return nil
}

// scanRequirements collects pinned dependencies from requirements*.txt files.
// Shared with the FastAPI adapter.
func scanRequirements(ctx context.Context, res *Result, adapter model.Framework, root string) error {
	err := walkFiles(ctx, root, func(rel, abs string) error {
		base := filepath.Base(rel)
		if !strings.HasPrefix(base, "requirements") || !strings.HasSuffix(base, ".txt") {
			return nil
		}
		matches, err := grepFile(abs, requirementRe)
		if err != nil {
			return nil
		}
		for _, m := range matches {
			name := m.Groups[1]
			if name == "" || strings.HasPrefix(name, "#") || strings.HasPrefix(name, "-") {
				continue
			}
			res.addFinding(adapter, "dependency", rel, m.Line, name, m.Groups[2])
		}
		return nil
	})
	if err != nil {
		return err
	}
	seedDependencyAudit(res)
	return nil
}

// seedRouteIdeas adds route-derived idea seeds: an API reference idea when
// routes exist, and a consolidation idea when the same path is registered
// more than once.
func seedRouteIdeas(res *Result, framework model.Framework) {
	if len(res.Findings) == 0 {
		return
	}

	seen := map[string]int{}
	dupes := 0
	for _, f := range res.Findings {
		seen[f.Symbol]++
		if seen[f.Symbol] == 2 {
			dupes++
		}
	}

	res.addSeed(
		fmt.Sprintf("Generate API reference for %d %s routes", len(res.Findings), framework),
		"Route registrations were found without a generated reference; publish one from the scan output.",
		2, 3,
	)
	if dupes > 0 {
		res.addSeed(
			fmt.Sprintf("Consolidate %d duplicate route registrations", dupes),
			"The same path is registered more than once; collapse the duplicates behind a single handler.",
			2, 4,
		)
	}
}

// seedDependencyAudit adds a pruning idea for large dependency sets.
func seedDependencyAudit(res *Result) {
	if n := len(res.Findings); n >= 30 {
		res.addSeed(
			fmt.Sprintf("Audit %d declared dependencies for pruning", n),
			"The dependency list is large; audit for unused or duplicate packages.",
			3, 2,
		)
	}
}
