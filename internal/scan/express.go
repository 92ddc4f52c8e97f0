package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/alfredjeanlab/forge/internal/model"
)

var (
	expressRouteRe = regexp.MustCompile(`\b(?:app|router)\.(get|post|put|patch|delete|all|use)\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`)
	expressModelRe = regexp.MustCompile(`\b(?:mongoose\.model|sequelize\.define)\(\s*['"` + "`" + `](\w+)['"` + "`" + `]`)
)

// ExpressAdapter scans Express.js projects: route registrations on app or
// router objects, mongoose/sequelize model definitions, and package.json
// dependency lists.
type ExpressAdapter struct{}

func NewExpressAdapter() *ExpressAdapter { return &ExpressAdapter{} }

func (a *ExpressAdapter) Framework() model.Framework { return model.FrameworkExpress }

// packageJSON is the subset of package.json the adapter reads.
type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Detect claims trees whose root package.json declares express.
func (a *ExpressAdapter) Detect(root string) (bool, error) {
	pkg, err := readPackageJSON(filepath.Join(root, "package.json"))
	if err != nil {
		return false, nil // no or unreadable package.json, not an express tree
	}
	_, ok := pkg.Dependencies["express"]
	return ok, nil
}

func (a *ExpressAdapter) Scan(ctx context.Context, root string, typ model.ScanType) (*Result, error) {
	res := &Result{}
	var err error
	switch typ {
	case model.ScanRoutes:
		err = a.scanRoutes(ctx, res, root)
	case model.ScanModels:
		err = a.scanModels(ctx, res, root)
	case model.ScanDeps:
		err = a.scanDeps(res, root)
	case model.ScanTodo:
		err = scanTodos(ctx, res, a.Framework(), root, map[string]bool{".js": true, ".ts": true, ".mjs": true})
		seedTodoBurndown(res, len(res.Findings))
	case model.ScanCensus:
		err = scanCensus(ctx, res, a.Framework(), root)
	}
	if err != nil {
		return nil, fmt.Errorf("express %s scan: %w", typ, err)
	}
	return res, nil
}

func (a *ExpressAdapter) scanRoutes(ctx context.Context, res *Result, root string) error {
	err := walkFiles(ctx, root, func(rel, abs string) error {
		if !isJSFile(rel) {
			return nil
		}
		matches, err := grepFile(abs, expressRouteRe)
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

func (a *ExpressAdapter) scanModels(ctx context.Context, res *Result, root string) error {
	err := walkFiles(ctx, root, func(rel, abs string) error {
		if !isJSFile(rel) {
			return nil
		}
		matches, err := grepFile(abs, expressModelRe)
		if err != nil {
			return nil
		}
		for _, m := range matches {
			res.addFinding(a.Framework(), "model", rel, m.Line, m.Groups[1], "")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if n := len(res.Findings); n > 0 {
		res.addSeed(
			fmt.Sprintf("Add schema validation for %d Express models", n),
			"Model definitions were found; check that request payloads are validated before reaching them.",
			3, 3,
		)
	}
	return nil
}

// scanDeps reads the root package.json only; nested packages are out of scope.
func (a *ExpressAdapter) scanDeps(res *Result, root string) error {
	rel := "package.json"
	pkg, err := readPackageJSON(filepath.Join(root, rel))
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(pkg.Dependencies) {
		res.addFinding(a.Framework(), "dependency", rel, 0, name, pkg.Dependencies[name])
	}
	for _, name := range sortedKeys(pkg.DevDependencies) {
		res.addFinding(a.Framework(), "dependency", rel, 0, name, pkg.DevDependencies[name]+" (dev)")
	}
	seedDependencyAudit(res)
	return nil
}

func readPackageJSON(path string) (*packageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &pkg, nil
}

func isJSFile(rel string) bool {
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".js", ".ts", ".mjs", ".cjs":
		return true
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
