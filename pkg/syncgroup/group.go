// Package syncgroup keeps a set of viewers following one master's frame
// index, play state and rate.
package syncgroup

import (
	"errors"
	"sync"

	"github.com/user/reelsync/pkg/adapters/logger"
	"github.com/user/reelsync/pkg/ports"
)

// ErrNotMember is returned by SetMaster for a member outside the group.
var ErrNotMember = errors.New("syncgroup: not a member")

// Member is the view of a viewer the group needs. The group holds members
// by reference without owning them and checks Alive before each call.
type Member interface {
	ID() string
	Alive() bool
	IsPlaying() bool
	CurrentFrame() int
	Rate() float64

	ApplySyncFrame(index int)
	ApplySyncPlaying(playing bool)
	ApplySyncRate(rate float64)
}

// Group is an ordered member list with one master.
//
// Propagation methods snapshot the followers under the mutex and call them
// without holding it, so a member may query the group from inside an apply.
type Group struct {
	mu      sync.Mutex
	members []Member
	master  Member
	logger  ports.Logger
}

// New creates an empty group.
func New(log ports.Logger) *Group {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Group{logger: log.WithComponent("syncgroup")}
}

// Add appends m. The first member becomes master. Duplicates are ignored.
func (g *Group) Add(m Member) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.indexLocked(m) >= 0 {
		return false
	}
	g.members = append(g.members, m)
	if g.master == nil {
		g.master = m
		g.logger.Debug("Master is now %s", m.ID())
	}
	return true
}

// Remove drops m. If m was master, the first remaining member is promoted.
func (g *Group) Remove(m Member) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexLocked(m)
	if i < 0 {
		return false
	}
	g.members = append(g.members[:i], g.members[i+1:]...)

	switch {
	case len(g.members) == 0:
		g.master = nil
	case g.master != nil && g.master.ID() == m.ID():
		g.master = g.members[0]
		g.logger.Debug("Master is now %s", g.master.ID())
	}
	return true
}

// SetMaster makes m the master. m must already be a member.
func (g *Group) SetMaster(m Member) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexLocked(m)
	if i < 0 {
		return ErrNotMember
	}
	g.master = g.members[i]
	g.logger.Debug("Master is now %s", m.ID())
	return nil
}

// Master returns the master, or nil for an empty group.
func (g *Group) Master() Member {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.master
}

// IsMaster reports whether m is the master.
func (g *Group) IsMaster(m Member) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return m != nil && g.master != nil && g.master.ID() == m.ID()
}

// Contains reports whether m is a member.
func (g *Group) Contains(m Member) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.indexLocked(m) >= 0
}

// Members returns the members in insertion order.
func (g *Group) Members() []Member {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Member(nil), g.members...)
}

// Len returns the number of members.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}

// Reset removes every member and clears the master.
func (g *Group) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members = nil
	g.master = nil
}

// SyncFrame asks every live follower not already at index to seek there.
func (g *Group) SyncFrame(index int) {
	for _, f := range g.followers() {
		if f.CurrentFrame() != index {
			f.ApplySyncFrame(index)
		}
	}
}

// SetPlaying propagates the master's play state.
func (g *Group) SetPlaying(playing bool) {
	for _, f := range g.followers() {
		if f.IsPlaying() != playing {
			f.ApplySyncPlaying(playing)
		}
	}
}

// SetRate propagates the master's rate.
func (g *Group) SetRate(rate float64) {
	for _, f := range g.followers() {
		if f.Rate() != rate {
			f.ApplySyncRate(rate)
		}
	}
}

// followers snapshots the live non-master members.
func (g *Group) followers() []Member {
	g.mu.Lock()
	snapshot := make([]Member, 0, len(g.members))
	for _, m := range g.members {
		if g.master != nil && m.ID() == g.master.ID() {
			continue
		}
		snapshot = append(snapshot, m)
	}
	g.mu.Unlock()

	live := snapshot[:0]
	for _, m := range snapshot {
		if m.Alive() {
			live = append(live, m)
		}
	}
	return live
}

func (g *Group) indexLocked(m Member) int {
	if m == nil {
		return -1
	}
	id := m.ID()
	for i, x := range g.members {
		if x.ID() == id {
			return i
		}
	}
	return -1
}
