package ports

import (
	"github.com/user/reelsync/pkg/frame"
)

// FrameInfo accompanies a frame handed to a Display.
type FrameInfo struct {
	Index      int  // zero-based frame index
	Total      int  // total frames in the medium
	Composited bool // true when the frame is a blend result rather than a decoded frame
}

// Display renders already-normalized RGB frames.
// Implementations must not retain or modify the frame after returning.
type Display interface {
	Display(f *frame.RGB, info FrameInfo)
}

// Notifier surfaces user-facing error messages. Calls are fire-and-forget.
type Notifier interface {
	ReportError(message string)
}
