package status

// Project represents a project lifecycle status
type Project string

const (
	ProjectDraft     Project = "DRAFT"
	ProjectActive    Project = "ACTIVE"
	ProjectCompleted Project = "COMPLETED"
	ProjectArchived  Project = "ARCHIVED"
)

// projectTransitions is the fixed transition graph. ARCHIVED is terminal.
var projectTransitions = map[Project][]Project{
	ProjectDraft:     {ProjectActive, ProjectArchived},
	ProjectActive:    {ProjectCompleted, ProjectArchived},
	ProjectCompleted: {ProjectArchived},
	ProjectArchived:  {},
}

// String returns the string representation of the status
func (s Project) String() string {
	return string(s)
}

// IsValid returns true if the status is a known project status
func (s Project) IsValid() bool {
	_, ok := projectTransitions[s]
	return ok
}

// IsTerminal returns true if no further transitions are allowed
func (s Project) IsTerminal() bool {
	return s.IsValid() && len(projectTransitions[s]) == 0
}

// IsEditable returns true if the project's contents may still be modified
func (s Project) IsEditable() bool {
	return s == ProjectDraft || s == ProjectActive
}

// CanTransitionTo returns true if the edge s -> target is in the graph.
// Self-transitions are always rejected.
func (s Project) CanTransitionTo(target Project) bool {
	if target == s || !target.IsValid() {
		return false
	}
	return contains(projectTransitions[s], target)
}

// AllowedTargets returns the statuses reachable from s in one transition
func (s Project) AllowedTargets() []Project {
	return append([]Project(nil), projectTransitions[s]...)
}
