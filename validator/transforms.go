package validator

import "github.com/primestruct/corelang/ast"

// mutuallyExclusiveGroups lists transform names that may never co-occur on
// the same node.
var mutuallyExclusiveGroups = [][]string{
	{"public", "private"},
	{"stack", "heap", "buffer"},
}

// tripleExclusive lists pod/handle/gpu_lane, which are pairwise exclusive on
// a definition in addition to the groups above.
var tripleExclusive = []string{"pod", "handle", "gpu_lane"}

// checkTransformExclusivity enforces the mutually-exclusive transform
// groups on a single node's transform list.
func (v *Validator) checkTransformExclusivity(transforms []*ast.Expr) bool {
	present := make(map[string]bool, len(transforms))
	for _, t := range transforms {
		present[t.Name] = true
	}
	for _, group := range mutuallyExclusiveGroups {
		seen := ""
		for _, name := range group {
			if present[name] {
				if seen != "" {
					return v.fail("mutually exclusive transforms: %s and %s", seen, name)
				}
				seen = name
			}
		}
	}
	seen := ""
	for _, name := range tripleExclusive {
		if present[name] {
			if seen != "" {
				return v.fail("mutually exclusive transforms: %s and %s", seen, name)
			}
			seen = name
		}
	}
	return true
}

// checkPodFields enforces "a pod struct may not contain handle or gpu_lane
// fields".
func (v *Validator) checkPodFields(def *ast.Definition) bool {
	if !def.IsStruct() || !hasAnyTransform(def.Transforms, "pod") {
		return true
	}
	for _, field := range def.Body {
		if field.HasTransform("handle") || field.HasTransform("gpu_lane") {
			return v.fail("pod struct may not contain handle or gpu_lane fields")
		}
	}
	return true
}

func hasAnyTransform(transforms []*ast.Expr, name string) bool {
	for _, t := range transforms {
		if t.Name == name {
			return true
		}
	}
	return false
}
