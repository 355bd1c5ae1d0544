// Package convert turns editor-format workflow documents (node/link arrays
// with nested subgraphs) into the flat API format consumed by the execution
// engine: a mapping from unique node identifier to operation type plus fully
// resolved inputs.
package convert

// IsAPIFormat reports whether a decoded JSON document already matches the
// API shape: a mapping whose values each carry class_type and inputs.
// Absence of expected fields is evidence of "not this format", never an
// error, so arbitrary malformed input is safe to pass in.
func IsAPIFormat(doc any) bool {
	m, ok := doc.(map[string]any)
	if !ok || len(m) == 0 {
		return false
	}
	if _, has := m["nodes"]; has {
		return false
	}
	if _, has := m["links"]; has {
		return false
	}
	for _, v := range m {
		node, ok := v.(map[string]any)
		if !ok {
			return false
		}
		if _, has := node["class_type"]; !has {
			return false
		}
		if _, has := node["inputs"]; !has {
			return false
		}
	}
	return true
}
