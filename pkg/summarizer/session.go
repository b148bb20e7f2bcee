package summarizer

import (
	"time"

	"github.com/user/reelsync/pkg/session"
)

// FromSession captures the current state of every viewer in s.
// It reads viewer state, so call it from the goroutine that owns the session.
func FromSession(s *session.Session, elapsed time.Duration) *Summary {
	b := NewBuilder().WithElapsed(elapsed).WithSync(s.SyncEnabled())
	group := s.Group()

	for _, v := range s.Viewers() {
		st := v.Snapshot()
		info := v.Info()
		stats := v.Stats()

		role := ""
		switch {
		case group.IsMaster(v):
			role = "master"
		case group.Contains(v):
			role = "follower"
		}

		b.AddViewer(ViewerInfo{
			Slot:         s.Slot(v),
			Name:         v.Name(),
			Path:         v.Path(),
			Role:         role,
			Kind:         info.Kind.String(),
			Codec:        info.Codec,
			Width:        info.Width,
			Height:       info.Height,
			FrameCount:   st.TotalFrames,
			CurrentFrame: st.CurrentFrame,
			Rate:         st.Rate,
			Speed:        st.Speed,
			Playing:      st.Playing,
			Produced:     stats.Produced,
			Waits:        stats.Waits,
			Wraps:        stats.Wraps,
		})
	}

	comp := s.Compositor()
	if main, over := comp.Main(), comp.Overlay(); main != nil && over != nil {
		b.WithOverlay(OverlayInfo{
			MainSlot:    slotOf(s, main.ID()),
			OverlaySlot: slotOf(s, over.ID()),
			Mode:        comp.Mode().String(),
			Opacity:     comp.Opacity(),
			Active:      comp.Active(),
			Blended:     comp.Blended(),
		})
	}

	return b.Build()
}

// slotOf returns 0 for a viewer that has since been closed.
func slotOf(s *session.Session, id string) int {
	v, err := s.Viewer(id)
	if err != nil {
		return 0
	}
	return s.Slot(v)
}
