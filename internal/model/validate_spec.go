package model

import (
	"fmt"
	"path"
	"strings"
)

// maxOperations bounds how many steps a single spec may contain.
const maxOperations = 50

// requiredOpArgs maps each operation kind to the argument keys it requires.
var requiredOpArgs = map[OpKind][]string{
	OpRename:          {"to"},
	OpExtractFunction: {"name", "start_line", "end_line"},
	OpMoveFile:        {"to"},
	OpInline:          {},
	OpAddParameter:    {"name", "type"},
	OpDeleteCode:      {"start_line", "end_line"},
}

// ValidateRefactorSpec checks every field of a RefactorSpec and returns a
// *ValidationError listing all violations at once, or nil when the spec is
// valid. Operations are validated individually; errors are reported under
// "operations[i].<field>".
func ValidateRefactorSpec(s *RefactorSpec) error {
	var ve ValidationError

	// Name: required, lowercase kebab-case identifier.
	name := strings.TrimSpace(s.Name)
	if name == "" {
		ve.add("name", "is required")
	} else if !isKebabCase(name) {
		ve.add("name", fmt.Sprintf("must be lowercase kebab-case, got %q", name))
	}

	// Version: only the current schema version is accepted.
	if s.Version != SpecVersion {
		ve.add("version", fmt.Sprintf("must be %q, got %q", SpecVersion, s.Version))
	}

	validateSelector(&ve, "target", s.Target)

	// Operations: at least one, bounded, each individually checked.
	if len(s.Operations) == 0 {
		ve.add("operations", "at least one operation is required")
	}
	if len(s.Operations) > maxOperations {
		ve.add("operations", fmt.Sprintf("must contain at most %d operations, got %d", maxOperations, len(s.Operations)))
	}
	for idx, op := range s.Operations {
		validateOperation(&ve, fmt.Sprintf("operations[%d]", idx), op)
	}

	// Constraints.
	if s.Constraints.MaxFilesTouched < 0 {
		ve.add("constraints.max_files_touched", fmt.Sprintf("must not be negative, got %d", s.Constraints.MaxFilesTouched))
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func validateSelector(ve *ValidationError, field string, sel Selector) {
	p := strings.TrimSpace(sel.Path)
	if p == "" {
		ve.add(field+".path", "is required")
	} else {
		if path.IsAbs(p) {
			ve.add(field+".path", "must be relative to the tree root")
		}
		if strings.Contains(p, "..") {
			ve.add(field+".path", "must not contain \"..\"")
		}
		if _, err := path.Match(p, "x"); err != nil {
			ve.add(field+".path", fmt.Sprintf("invalid glob pattern %q", p))
		}
	}

	if !sel.Kind.IsValid() {
		ve.add(field+".kind", fmt.Sprintf("invalid value %q", sel.Kind))
	}
	if sel.Kind != "" && sel.Symbol == "" {
		ve.add(field+".symbol", fmt.Sprintf("is required when kind is %q", sel.Kind))
	}
}

func validateOperation(ve *ValidationError, field string, op Operation) {
	if !op.Kind.IsValid() {
		ve.add(field+".kind", fmt.Sprintf("invalid value %q", op.Kind))
		return // cannot check args for an unknown kind
	}

	required := requiredOpArgs[op.Kind]
	for _, key := range required {
		if strings.TrimSpace(op.Args[key]) == "" {
			ve.add(field+".args."+key, fmt.Sprintf("is required for %s", op.Kind))
		}
	}

	// Unknown argument keys are rejected so typos surface at validation time.
	for key := range op.Args {
		if !argAllowed(op.Kind, key) {
			ve.add(field+".args."+key, fmt.Sprintf("is not a valid argument for %s", op.Kind))
		}
	}

	// Line ranges must be positive and ordered.
	if hasLineRange(op.Kind) {
		start, startOK := parseLine(op.Args["start_line"])
		end, endOK := parseLine(op.Args["end_line"])
		if op.Args["start_line"] != "" && !startOK {
			ve.add(field+".args.start_line", fmt.Sprintf("must be a positive integer, got %q", op.Args["start_line"]))
		}
		if op.Args["end_line"] != "" && !endOK {
			ve.add(field+".args.end_line", fmt.Sprintf("must be a positive integer, got %q", op.Args["end_line"]))
		}
		if startOK && endOK && end < start {
			ve.add(field+".args.end_line", fmt.Sprintf("must not be before start_line (%d < %d)", end, start))
		}
	}
}

// optionalOpArgs maps each operation kind to argument keys that are accepted
// but not required.
var optionalOpArgs = map[OpKind][]string{
	OpAddParameter: {"default"},
	OpDeleteCode:   {"reason"},
}

func argAllowed(kind OpKind, key string) bool {
	for _, k := range requiredOpArgs[kind] {
		if k == key {
			return true
		}
	}
	for _, k := range optionalOpArgs[kind] {
		if k == key {
			return true
		}
	}
	return false
}

func hasLineRange(kind OpKind) bool {
	return kind == OpExtractFunction || kind == OpDeleteCode
}

func parseLine(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
		if n > 1<<30 {
			return 0, false
		}
	}
	return n, n > 0
}

// isKebabCase reports whether s consists of lowercase alphanumeric segments
// separated by single hyphens.
func isKebabCase(s string) bool {
	prevHyphen := true // leading hyphen is invalid
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			prevHyphen = false
		case r == '-':
			if prevHyphen {
				return false
			}
			prevHyphen = true
		default:
			return false
		}
	}
	return !prevHyphen && s != ""
}
