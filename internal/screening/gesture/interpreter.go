// internal/screening/gesture/interpreter.go
package gesture

import "math"

// DefaultThreshold is the horizontal travel a drag must exceed to count as a decision.
const DefaultThreshold = 100.0

// Decision is the terminal output of one input cycle.
type Decision string

const (
	DecisionNone   Decision = ""
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
	DecisionCancel Decision = "cancel"
)

// IsTerminal reports whether the decision should advance the screening queue.
func (d Decision) IsTerminal() bool {
	return d == DecisionAccept || d == DecisionReject
}

// Target identifies the element a pointer or touch started on.
type Target string

const (
	TargetCard   Target = "card"
	TargetLink   Target = "link"
	TargetButton Target = "button"
)

// Interactive reports whether pressing on the target must not start a drag.
func (t Target) Interactive() bool {
	return t == TargetLink || t == TargetButton
}

// Keys understood by the keyboard path.
const (
	KeyArrowRight = "ArrowRight"
	KeyArrowLeft  = "ArrowLeft"
)

// Hint is the label shown on a card while it is being dragged.
type Hint string

const (
	HintNone      Hint = ""
	HintShortlist Hint = "shortlist"
	HintReject    Hint = "reject"
)

// State is the presentation view of the active card.
type State struct {
	DX       float64 `json:"dx"`
	DY       float64 `json:"dy"`
	Dragging bool    `json:"dragging"`
	Rotation float64 `json:"rotation"`
	Opacity  float64 `json:"opacity"`
	Scale    float64 `json:"scale"`
	Hint     Hint    `json:"hint"`
}

// Interpreter turns pointer, touch, keyboard and button input for one active card
// into decisions. It is not safe for concurrent use; callers own one per card stack.
type Interpreter struct {
	threshold float64

	originX  float64
	originY  float64
	dx       float64
	dy       float64
	dragging bool
}

// New returns an interpreter using threshold, or DefaultThreshold when threshold <= 0.
func New(threshold float64) *Interpreter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Interpreter{threshold: threshold}
}

func (in *Interpreter) Threshold() float64 {
	return in.threshold
}

// Begin records the drag origin. Ignored while a drag is active or when the press
// landed on a link or button inside the card.
func (in *Interpreter) Begin(x, y float64, target Target) {
	if in.dragging || target.Interactive() {
		return
	}
	in.dragging = true
	in.originX = x - in.dx
	in.originY = y - in.dy
}

// Move updates the displacement relative to the origin.
func (in *Interpreter) Move(x, y float64) {
	if !in.dragging {
		return
	}
	in.dx = x - in.originX
	in.dy = y - in.originY
}

// End resolves the drag against the threshold. The card returns to rest whatever
// the outcome; a cancelled card stays, a decided card is replaced by the next one.
func (in *Interpreter) End() Decision {
	if !in.dragging {
		return DecisionNone
	}
	decision := DecisionCancel
	if math.Abs(in.dx) > in.threshold {
		if in.dx > 0 {
			decision = DecisionAccept
		} else {
			decision = DecisionReject
		}
	}
	in.rest()
	return decision
}

// Leave handles the pointer leaving the card surface mid-drag.
func (in *Interpreter) Leave() Decision {
	return in.End()
}

// Accept is the button path; any partial drag is discarded.
func (in *Interpreter) Accept() Decision {
	in.rest()
	return DecisionAccept
}

// Reject is the button path; any partial drag is discarded.
func (in *Interpreter) Reject() Decision {
	in.rest()
	return DecisionReject
}

// Key maps arrow keys onto decisions.
func (in *Interpreter) Key(key string) Decision {
	switch key {
	case KeyArrowRight:
		return in.Accept()
	case KeyArrowLeft:
		return in.Reject()
	default:
		return DecisionNone
	}
}

// Reset puts the card back at rest without emitting anything.
func (in *Interpreter) Reset() {
	in.rest()
}

func (in *Interpreter) rest() {
	in.dragging = false
	in.originX, in.originY = 0, 0
	in.dx, in.dy = 0, 0
}

func (in *Interpreter) Dragging() bool {
	return in.dragging
}

func (in *Interpreter) Displacement() (float64, float64) {
	return in.dx, in.dy
}

// State derives rotation, opacity, scale and label from the displacement.
func (in *Interpreter) State() State {
	st := State{
		DX:       in.dx,
		DY:       in.dy,
		Dragging: in.dragging,
		Rotation: in.dx / 100 * 5,
		Opacity:  math.Max(1-math.Abs(in.dx)/500, 0.5),
		Scale:    1,
	}
	if in.dragging {
		st.Scale = 1.02
	}
	half := in.threshold * 0.5
	switch {
	case in.dx > half:
		st.Hint = HintShortlist
	case in.dx < -half:
		st.Hint = HintReject
	}
	return st
}
