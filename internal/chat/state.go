package chat

import (
	"context"
	"strings"

	"github.com/RichardoC/padchat/internal/models"
)

// Phase is the state of the send pipeline.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSending
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	default:
		return "unknown"
	}
}

const (
	DefaultBreakpoint     = 768
	DefaultMaxInputHeight = 6
)

type Options struct {
	// Breakpoint is the widest viewport that still counts as narrow. On
	// narrow viewports the sidebar is a drawer that closes after selection.
	Breakpoint int
	// MaxInputHeight caps the auto-grown input, in lines.
	MaxInputHeight int
}

func (o Options) withDefaults() Options {
	if o.Breakpoint <= 0 {
		o.Breakpoint = DefaultBreakpoint
	}
	if o.MaxInputHeight <= 0 {
		o.MaxInputHeight = DefaultMaxInputHeight
	}
	return o
}

// State is a snapshot of the controller's session.
type State struct {
	Conversations []models.Conversation
	CurrentID     int64
	HasCurrent    bool
	Phase         Phase
	Input         string
	SidebarOpen   bool
	Width         int
}

type session struct {
	conversations []models.Conversation
	currentID     int64
	hasCurrent    bool
	phase         Phase
	input         string
	sidebarOpen   bool
	width         int

	// generation is bumped whenever the selection changes so that message
	// loads and chat replies for an earlier selection can be discarded.
	generation uint64
	cancelLoad context.CancelFunc
}

// SendEnabled reports whether the send control should be enabled.
func SendEnabled(input string, phase Phase) bool {
	return strings.TrimSpace(input) != "" && phase != PhaseSending
}

// InputHeight is the auto-grown height of the input in lines, capped at limit.
func InputHeight(input string, limit int) int {
	return min(strings.Count(input, "\n")+1, limit)
}
