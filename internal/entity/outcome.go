package entity

// OutcomeKind tags a NavigationOutcome.
type OutcomeKind int

const (
	NoNavigation OutcomeKind = iota
	NewSurface
	SameSurface
	ActionFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case NewSurface:
		return "new_surface"
	case SameSurface:
		return "same_surface"
	case ActionFailed:
		return "action_failed"
	default:
		return "no_navigation"
	}
}

// NavigationOutcome is the classified result of activating one slide.
// Destination is set for NewSurface and SameSurface, Reason for ActionFailed.
type NavigationOutcome struct {
	Kind        OutcomeKind
	Destination string
	Reason      string
}

func NewSurfaceOutcome(destination string) NavigationOutcome {
	return NavigationOutcome{Kind: NewSurface, Destination: destination}
}

func SameSurfaceOutcome(destination string) NavigationOutcome {
	return NavigationOutcome{Kind: SameSurface, Destination: destination}
}

func NoNavigationOutcome() NavigationOutcome {
	return NavigationOutcome{Kind: NoNavigation}
}

func ActionFailedOutcome(reason string) NavigationOutcome {
	return NavigationOutcome{Kind: ActionFailed, Reason: reason}
}

// Captured reports whether the outcome carries a destination.
func (o NavigationOutcome) Captured() bool {
	return o.Kind == NewSurface || o.Kind == SameSurface
}
