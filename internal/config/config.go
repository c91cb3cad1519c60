// Package config loads the optional defaults file that seeds validator and
// lowerer behavior ahead of any CLI flags a driver (out of scope for this
// core) might layer on top — entry path, default effect/capability tokens,
// and enabled text filters, loaded from an optional TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Defaults holds the values a driver would expose as CLI-settable
// but that this core treats as plain configuration: a driver assembles them
// from flags, a file, or both, and hands the resulting Defaults to the
// validator.
type Defaults struct {
	Entry             string   `toml:"entry"`
	DefaultEffects    []string `toml:"default_effects"`
	DefaultCapability []string `toml:"default_capabilities"`
	TextFilters       []string `toml:"text_filters"`
}

// DefaultEntry is used when a Defaults value has no Entry set.
const DefaultEntry = "/main"

// Load reads a TOML defaults file at path. A missing file is not an error —
// Load returns the zero-value Defaults with Entry defaulted, matching the
// CLI surface's own `--entry` default of "/main".
func Load(path string) (Defaults, error) {
	d := Defaults{Entry: DefaultEntry}
	if path == "" {
		return d, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return d, nil
	}
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return Defaults{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if d.Entry == "" {
		d.Entry = DefaultEntry
	}
	return d, nil
}

// ExpandEffectTokens expands the `default`/`none` sugar tokens
// describes: `default` expands to {io_out}, `none` expands to nothing, any
// other identifier is added verbatim.
func ExpandEffectTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	add := func(effect string) {
		if !seen[effect] {
			seen[effect] = true
			out = append(out, effect)
		}
	}
	for _, tok := range tokens {
		switch tok {
		case "default":
			add("io_out")
		case "none":
			// expands to nothing
		default:
			add(tok)
		}
	}
	return out
}
