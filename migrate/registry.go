package migrate

import "sort"

// Registry holds the full ordered set of known definitions. Built once at
// startup, never mutated.
type Registry struct {
	defs  []Definition
	byVer map[string]Definition
}

// NewRegistry validates and sorts the given definitions. Malformed or
// duplicate versions, duplicate names and missing procedures are all
// rejected here so a run never has to deal with them.
func NewRegistry(defs ...Definition) (*Registry, error) {
	byVer := make(map[string]Definition, len(defs))
	names := make(map[string]struct{}, len(defs))

	for _, d := range defs {
		if !validVersion(d.Version) {
			return nil, &OrderingError{Version: d.Version, Reason: "version must be a non-empty decimal string"}
		}

		if _, ok := byVer[d.Version]; ok {
			return nil, &OrderingError{Version: d.Version, Reason: "duplicate version"}
		}

		if d.Name == "" {
			return nil, &OrderingError{Version: d.Version, Reason: "missing name"}
		}

		if _, ok := names[d.Name]; ok {
			return nil, &OrderingError{Version: d.Version, Reason: "duplicate name " + d.Name}
		}

		if d.Up == nil || d.Down == nil {
			return nil, &OrderingError{Version: d.Version, Reason: "up and down are both required"}
		}

		byVer[d.Version] = d
		names[d.Name] = struct{}{}
	}

	sorted := make([]Definition, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool {
		return lessVersion(sorted[i].Version, sorted[j].Version)
	})

	return &Registry{defs: sorted, byVer: byVer}, nil
}

// Definitions returns every known definition in ascending version order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup returns the definition for a version, if the registry knows it.
func (r *Registry) Lookup(version string) (Definition, bool) {
	d, ok := r.byVer[version]
	return d, ok
}

func validVersion(v string) bool {
	if v == "" {
		return false
	}

	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}

	return true
}

// lessVersion compares decimal version strings numerically without parsing
// them into integers, so widths beyond int64 still sort correctly.
func lessVersion(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}

	return a < b
}
