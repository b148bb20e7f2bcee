package player

import (
	"github.com/user/reelsync/pkg/syncgroup"
)

// SetGroup attaches the viewer to g. Membership is managed by the group;
// the viewer only consults it to decide whether it leads.
func (v *Viewer) SetGroup(g *syncgroup.Group) {
	v.group = g
}

// Group returns the attached group, or nil.
func (v *Viewer) Group() *syncgroup.Group {
	return v.group
}

// IsMaster reports whether this viewer leads its group.
func (v *Viewer) IsMaster() bool {
	return v.group != nil && v.group.IsMaster(v)
}

// ApplySyncFrame seeks to the master's frame. A playing follower resumes
// only if the master is still playing.
func (v *Viewer) ApplySyncFrame(index int) {
	if !v.Alive() || !v.state.Loaded || index == v.state.CurrentFrame {
		return
	}
	wasPlaying := v.state.Playing
	if wasPlaying {
		v.Pause()
	}
	if err := v.SeekTo(index); err != nil {
		v.logger.Debug("Sync seek to %d ignored: %v", index, err)
		return
	}
	if wasPlaying && v.masterPlaying() {
		v.Play()
	}
}

// ApplySyncPlaying mirrors the master's play state.
func (v *Viewer) ApplySyncPlaying(playing bool) {
	switch {
	case playing && !v.state.Playing:
		v.Play()
	case !playing && v.state.Playing:
		v.Pause()
	}
}

// ApplySyncRate mirrors the master's rate.
func (v *Viewer) ApplySyncRate(rate float64) {
	if !(rate > 0) || rate == v.state.Rate {
		return
	}
	v.setRate(ClampRate(rate))
}

func (v *Viewer) masterPlaying() bool {
	if v.group == nil {
		return false
	}
	m := v.group.Master()
	return m != nil && m.IsPlaying()
}

var _ syncgroup.Member = (*Viewer)(nil)
