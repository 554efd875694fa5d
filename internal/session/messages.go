package session

import "fmt"

// Message is a user-facing hint or error produced while placing rectangles.
type Message int

const (
	// NoMessage means there is nothing to tell the user.
	NoMessage Message = iota

	// HelpFindSurface asks the user to move until a surface is tracked.
	HelpFindSurface

	// HelpTapHoldRect asks the user to press and hold on a rectangle.
	HelpTapHoldRect

	// HelpTapReleaseRect asks the user to release to keep the selection.
	HelpTapReleaseRect

	// ErrNoRect is shown when a touch found no rectangle in the frame.
	ErrNoRect

	// ErrNoPlaneForRect is shown when no three corners share a surface.
	ErrNoPlaneForRect
)

// Name returns the stable identifier used on the wire.
func (m Message) Name() string {
	switch m {
	case NoMessage:
		return ""
	case HelpFindSurface:
		return "help_find_surface"
	case HelpTapHoldRect:
		return "help_tap_hold_rect"
	case HelpTapReleaseRect:
		return "help_tap_release_rect"
	case ErrNoRect:
		return "err_no_rect"
	case ErrNoPlaneForRect:
		return "err_no_plane_for_rect"
	default:
		return fmt.Sprintf("message(%d)", int(m))
	}
}

// Text returns the English text shown to the user.
func (m Message) Text() string {
	switch m {
	case HelpFindSurface:
		return "Move your phone until you see a blue grid covering the surface of your rectangle."
	case HelpTapHoldRect:
		return "Tap and hold to select a rectangle."
	case HelpTapReleaseRect:
		return "Release your finger to finalize your selection."
	case ErrNoRect:
		return "The rectangle couldn't be identified. Try moving your phone to another angle."
	case ErrNoPlaneForRect:
		return "The rectangle's surface wasn't found. " + HelpFindSurface.Text()
	default:
		return ""
	}
}

// IsError reports whether m describes a failed attempt.
func (m Message) IsError() bool {
	return m == ErrNoRect || m == ErrNoPlaneForRect
}

func (m Message) String() string {
	return m.Name()
}
