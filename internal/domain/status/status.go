// Package status defines the lifecycle status values and the fixed
// transition graphs for every aggregate type. All functions are pure:
// illegal transitions are reported as booleans or typed errors, never
// panics, so the service layer decides how to surface them.
package status

// contains reports whether target is in the list of permitted targets.
func contains[S ~string](targets []S, target S) bool {
	for _, t := range targets {
		if t == target {
			return true
		}
	}
	return false
}
