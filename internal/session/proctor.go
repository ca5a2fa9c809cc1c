package session

import "github.com/examspark/examspark-backend/internal/model"

// WarningKind classifies the advisory messages a live attempt can emit.
type WarningKind string

const (
	WarnFocusLoss  WarningKind = "focus_loss"
	WarnSkipped    WarningKind = "skipped"
	InfoFullscreen WarningKind = "fullscreen"
	InfoUnload     WarningKind = "unload"
)

// Warning is a non-blocking notice surfaced to the client. Proctoring
// is a soft deterrent: warnings never halt the attempt or block input.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// ApplySignal folds one client-reported proctoring signal into the
// state and returns the warning to surface, if any. Signals arriving
// outside the Active phase are ignored. FocusLossCount never decreases
// within a single Active phase; only Start and Retake reset it.
func (s State) ApplySignal(kind model.ProctorEventKind) (State, *Warning) {
	if s.Phase != PhaseActive {
		return s, nil
	}
	switch kind {
	case model.ProctorVisibilityHidden:
		s.FocusLossCount++
		s.WarningShown = true
		return s, &Warning{Kind: WarnFocusLoss, Message: "Leaving the exam tab is recorded. Please stay on this page."}
	case model.ProctorWindowBlur:
		// Don't stack a second warning on top of one still displayed.
		if s.WarningShown {
			return s, nil
		}
		s.FocusLossCount++
		s.WarningShown = true
		return s, &Warning{Kind: WarnFocusLoss, Message: "Switching windows is recorded. Please stay focused on the exam."}
	case model.ProctorFullscreenDenied:
		s.Fullscreen = false
		return s, &Warning{Kind: InfoFullscreen, Message: "Fullscreen could not be enabled. We recommend entering fullscreen manually."}
	case model.ProctorFullscreenExit:
		s.Fullscreen = false
		return s, &Warning{Kind: InfoFullscreen, Message: "Fullscreen was exited. We recommend staying in fullscreen for the exam."}
	case model.ProctorUnloadAttempt:
		return s, &Warning{Kind: InfoUnload, Message: "Leaving now will abandon your attempt."}
	}
	return s, nil
}

// EnterFullscreen records the client's successful best-effort switch to
// fullscreen presentation mode.
func (s State) EnterFullscreen() State {
	if s.Phase != PhaseActive {
		return s
	}
	s.Fullscreen = true
	return s
}

// DismissWarning marks the displayed proctoring warning as dismissed so
// a later blur can warn again.
func (s State) DismissWarning() State {
	s.WarningShown = false
	return s
}
