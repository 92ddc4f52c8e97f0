package model

import "time"

// SpecVersion is the refactoring spec schema version this build understands.
const SpecVersion = "1"

// SymbolKind classifies the code element a selector targets.
type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolClass    SymbolKind = "class"
	SymbolMethod   SymbolKind = "method"
	SymbolVariable SymbolKind = "variable"
	SymbolModule   SymbolKind = "module"
)

// IsValid checks whether the symbol kind is a known value.
// The empty string is also valid and means any kind.
func (k SymbolKind) IsValid() bool {
	switch k {
	case "", SymbolFunction, SymbolClass, SymbolMethod, SymbolVariable, SymbolModule:
		return true
	}
	return false
}

// Selector identifies the code a refactoring spec applies to.
type Selector struct {
	Path   string     `json:"path"`             // file path or glob, relative to the tree root
	Symbol string     `json:"symbol,omitempty"` // symbol name within the path, empty = whole file
	Kind   SymbolKind `json:"kind,omitempty"`
}

// OpKind is the kind of a single refactoring operation.
type OpKind string

const (
	OpRename          OpKind = "rename"
	OpExtractFunction OpKind = "extract_function"
	OpMoveFile        OpKind = "move_file"
	OpInline          OpKind = "inline"
	OpAddParameter    OpKind = "add_parameter"
	OpDeleteCode      OpKind = "delete_code"
)

// String returns the string representation of the operation kind.
func (k OpKind) String() string {
	return string(k)
}

// IsValid checks whether the operation kind is a known value.
func (k OpKind) IsValid() bool {
	switch k {
	case OpRename, OpExtractFunction, OpMoveFile, OpInline, OpAddParameter, OpDeleteCode:
		return true
	}
	return false
}

// Operation is one step of a refactoring spec. Args carries the
// per-kind arguments; which keys are required depends on the kind
// (see ValidateRefactorSpec).
type Operation struct {
	Kind OpKind            `json:"kind"`
	Args map[string]string `json:"args,omitempty"`
}

// Constraints bound what an executed spec is allowed to do.
type Constraints struct {
	MaxFilesTouched       int  `json:"max_files_touched,omitempty"` // 0 = unlimited
	ForbidPublicAPIChange bool `json:"forbid_public_api_change,omitempty"`
	RequireTestsPass      bool `json:"require_tests_pass,omitempty"`
}

// RefactorSpec is a declarative refactoring specification. Forge validates
// and stores specs; execution is delegated to external tooling.
type RefactorSpec struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Description string      `json:"description,omitempty"`
	Target      Selector    `json:"target"`
	Operations  []Operation `json:"operations"`
	Constraints Constraints `json:"constraints"`
	IdeaID      string      `json:"idea_id,omitempty"` // idea this spec implements
	CreatedBy   string      `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
