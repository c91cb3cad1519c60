// Package validator walks a Program with a symbol environment and enforces
// the language's semantic invariants: typing, mutability, effect and
// capability propagation, transform legality, binding inference, and
// entry-point shape. It produces a boolean plus, on failure, a single
// human-readable diagnostic — validation stops at the first violation and
// exposes no partial annotation to the lowerer.
package validator

import (
	"fmt"

	"github.com/primestruct/corelang/ast"
	"github.com/primestruct/corelang/internal/config"
	"github.com/primestruct/corelang/internal/diag"
)

// builtinBlockNames are the calls the validator recognizes as block
// envelopes regardless of import state: `if`, `repeat`, `block`.
var builtinBlockNames = map[string]bool{"if": true, "repeat": true, "block": true}

// mathBuiltins are the symbols that require a `/math/*` or `/math/<name>`
// import before they resolve.
var mathBuiltins = map[string]bool{
	"pi": true, "tau": true, "e": true,
	"sin": true, "cos": true, "tan": true,
	"asin": true, "acos": true, "atan": true, "atan2": true,
	"sinh": true, "cosh": true, "tanh": true,
	"exp": true, "log": true, "log2": true, "log10": true,
	"sqrt": true, "cbrt": true, "hypot": true, "pow": true,
	"clamp": true, "min": true, "max": true,
}

// effectBuiltins maps a builtin call name to the effect its use requires
// the enclosing definition to have declared.
var effectBuiltins = map[string]string{
	"print_line":  "io_out",
	"print_error": "io_out",
	"notify":      "pathspace_notify",
	"insert":      "heap_alloc",
	"take":        "heap_alloc",
}

// Validator holds the read-only state built once per Validate call: the
// program's symbol table, struct registrations, and normalized imports.
type Validator struct {
	program *ast.Program
	defs    map[string]*ast.Definition
	structs map[string]bool

	defaultEffects     []string
	defaultCapability  []string

	err string
}

// Result is the outcome of Validate: Ok reports success, Error is the
// first diagnostic encountered otherwise.
type Result struct {
	Ok    bool
	Error *diag.Diagnostic
}

// Validate checks program for semantic legality with entryPath as the
// top-level entry, applying defaultEffects/defaultCapabilities to the
// entry definition's initially-empty effect/capability sets.
func Validate(program *ast.Program, entryPath string, defaultEffects, defaultCapabilities []string) Result {
	v := &Validator{
		program:           program,
		structs:           map[string]bool{},
		defaultEffects:    config.ExpandEffectTokens(defaultEffects),
		defaultCapability: defaultCapabilities,
	}
	program.EntryPath = entryPath

	if ok := v.buildSymbolTable(); !ok {
		return Result{Ok: false, Error: diag.Semantic("%s", v.err)}
	}
	if ok := v.checkImportConflicts(); !ok {
		return Result{Ok: false, Error: diag.Semantic("%s", v.err)}
	}

	entry, ok := v.defs[entryPath]
	if !ok {
		return Result{Ok: false, Error: diag.Semantic("entry definition not found: %s", entryPath)}
	}
	if ok := v.validateEntryShape(entry); !ok {
		return Result{Ok: false, Error: diag.Semantic("%s", v.err)}
	}

	for _, def := range program.Definitions {
		if ok := v.validateDefinition(def, def.FullPath == entryPath); !ok {
			return Result{Ok: false, Error: diag.Semantic("%s", v.err)}
		}
	}

	return Result{Ok: true}
}

// fail records msg as the validator's diagnostic and returns false, the
// idiom every validating method in this package uses to short-circuit the
// walk on first violation.
func (v *Validator) fail(format string, args ...interface{}) bool {
	v.err = fmt.Sprintf(format, args...)
	return false
}
