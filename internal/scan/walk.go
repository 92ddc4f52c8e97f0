package scan

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/alfredjeanlab/forge/internal/model"
)

// maxFileSize caps how much of a single file an adapter will read.
const maxFileSize = 1 << 20 // 1 MiB

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	"venv":         true,
	".venv":        true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	".next":        true,
	".tox":         true,
}

// walkFiles walks the tree at root and calls fn for every regular file,
// passing the path relative to root. Skip rules and the file size cap are
// applied here so adapters never have to repeat them. The walk aborts when
// ctx is canceled.
func walkFiles(ctx context.Context, root string, fn func(rel, abs string) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > maxFileSize {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		return fn(filepath.ToSlash(rel), p)
	})
}

// lineMatch is one regexp hit in a file.
type lineMatch struct {
	Line   int
	Groups []string // submatches, Groups[0] is the whole match
}

// grepFile scans the file line by line and returns all matches of re.
func grepFile(path string, re *regexp.Regexp) ([]lineMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var matches []lineMatch
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxFileSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		for _, groups := range re.FindAllStringSubmatch(scanner.Text(), -1) {
			matches = append(matches, lineMatch{Line: lineNo, Groups: groups})
		}
	}
	return matches, scanner.Err()
}

// fileExists reports whether the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// fileContains reports whether the file at path contains substr.
func fileContains(path, substr string) bool {
	data, err := os.ReadFile(path)
	if err != nil || len(data) > maxFileSize {
		return false
	}
	return strings.Contains(string(data), substr)
}

var todoRe = regexp.MustCompile(`(?:TODO|FIXME|HACK)\b[:(]?\s*(.*)`)

// scanTodos produces "todo" findings for TODO/FIXME/HACK comments in files
// with the given extensions (empty = all files).
func scanTodos(ctx context.Context, res *Result, adapter model.Framework, root string, exts map[string]bool) error {
	return walkFiles(ctx, root, func(rel, abs string) error {
		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(rel))] {
			return nil
		}
		matches, err := grepFile(abs, todoRe)
		if err != nil {
			return nil // unreadable file, skip
		}
		for _, m := range matches {
			detail := strings.TrimSpace(m.Groups[1])
			res.addFinding(adapter, "todo", rel, m.Line, "", detail)
		}
		return nil
	})
}

// seedTodoBurndown adds a backlog idea when the todo count is large enough
// to be worth a dedicated pass.
func seedTodoBurndown(res *Result, count int) {
	if count >= 10 {
		res.addSeed(
			fmt.Sprintf("Burn down TODO backlog (%d items)", count),
			"The tree carries enough TODO/FIXME comments that a dedicated cleanup pass would pay off.",
			2, 2,
		)
	}
}

// scanCensus produces one "census" finding per file extension with its count.
func scanCensus(ctx context.Context, res *Result, adapter model.Framework, root string) error {
	counts := map[string]int{}
	err := walkFiles(ctx, root, func(rel, abs string) error {
		ext := strings.ToLower(filepath.Ext(rel))
		if ext == "" {
			ext = "(none)"
		}
		counts[ext]++
		return nil
	})
	if err != nil {
		return err
	}

	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		res.addFinding(adapter, "census", "", 0, ext, fmt.Sprintf("%d files", counts[ext]))
	}
	return nil
}
