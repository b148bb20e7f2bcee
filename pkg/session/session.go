// Package session is the registry of open viewers. It wires each viewer to
// the shared sync group and compositor and tears those links down when a
// viewer closes.
//
// Like the viewers it owns, a Session must only be used from the scheduler
// goroutine.
package session

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/user/reelsync/pkg/adapters/logger"
	"github.com/user/reelsync/pkg/adapters/lognotifier"
	"github.com/user/reelsync/pkg/compositor"
	"github.com/user/reelsync/pkg/player"
	"github.com/user/reelsync/pkg/ports"
	"github.com/user/reelsync/pkg/syncgroup"
)

var (
	ErrMissingDeps   = errors.New("session: source factory and scheduler are required")
	ErrUnknownViewer = errors.New("session: unknown viewer")
	ErrBadCommand    = errors.New("session: bad command")
)

// DisplayFactory creates the display for the slot-th viewer opened
// (1-based, never reused) showing path.
type DisplayFactory func(slot int, path string) ports.Display

// Deps are the collaborators shared by every viewer in the session.
type Deps struct {
	Factory    ports.SourceFactory
	Scheduler  ports.Scheduler
	NewDisplay DisplayFactory     // nil gives each viewer a null display
	Notifier   ports.Notifier     // defaults to logging
	Logger     ports.Logger       // defaults to no-op
	NewClock   ports.ClockFactory // defaults to the scheduler-driven clock
	Out        io.Writer          // receives status output; defaults to discard
}

// Options configures a session.
type Options struct {
	Player      player.Options
	Sync        bool
	Mode        compositor.Mode
	Opacity     float64
	OpacityStep float64
}

// DefaultOptions returns the stock session settings.
func DefaultOptions() Options {
	return Options{
		Player:      player.DefaultOptions(),
		Mode:        compositor.Normal,
		Opacity:     0.5,
		OpacityStep: 0.1,
	}
}

// Session owns the open viewers, the sync group and the compositor.
type Session struct {
	deps   Deps
	opts   Options
	logger ports.Logger

	viewers []*player.Viewer
	slots   map[string]int
	opened  int

	group       *syncgroup.Group
	syncEnabled bool
	comp        *compositor.Compositor
}

// New creates an empty session.
func New(deps Deps, opts Options) (*Session, error) {
	if deps.Factory == nil || deps.Scheduler == nil {
		return nil, ErrMissingDeps
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoop()
	}
	if deps.Notifier == nil {
		deps.Notifier = lognotifier.New(deps.Logger)
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}

	comp := compositor.New(deps.Logger)
	comp.SetMode(opts.Mode)
	comp.SetOpacity(opts.Opacity)

	return &Session{
		deps:        deps,
		opts:        opts,
		logger:      deps.Logger.WithComponent("session"),
		slots:       make(map[string]int),
		group:       syncgroup.New(deps.Logger),
		syncEnabled: opts.Sync,
		comp:        comp,
	}, nil
}

// Open creates and loads one viewer per path. With sync enabled each new
// viewer joins the group; the first viewer in an empty group becomes master.
// On error the viewers opened so far stay open and are returned.
func (s *Session) Open(paths ...string) ([]*player.Viewer, error) {
	var opened []*player.Viewer
	for _, path := range paths {
		v, err := s.open(path)
		if err != nil {
			return opened, err
		}
		opened = append(opened, v)
	}
	return opened, nil
}

func (s *Session) open(path string) (*player.Viewer, error) {
	slot := s.opened + 1
	var display ports.Display
	if s.deps.NewDisplay != nil {
		display = s.deps.NewDisplay(slot, path)
	}

	v, err := player.New(player.Deps{
		Factory:   s.deps.Factory,
		Scheduler: s.deps.Scheduler,
		Display:   display,
		Notifier:  s.deps.Notifier,
		Logger:    s.deps.Logger,
		NewClock:  s.deps.NewClock,
	}, s.opts.Player)
	if err != nil {
		return nil, err
	}
	v.SetGroup(s.group)
	v.OnClose(s.forget)

	if err := v.Load(path); err != nil {
		v.Close()
		return nil, err
	}
	s.opened = slot
	s.slots[v.ID()] = slot
	s.viewers = append(s.viewers, v)
	if s.syncEnabled {
		s.group.Add(v)
	}
	s.logger.Info("Opened %s as viewer %d", path, slot)
	return v, nil
}

// forget runs when a viewer closes.
func (s *Session) forget(v *player.Viewer) {
	for i, x := range s.viewers {
		if x == v {
			s.viewers = append(s.viewers[:i], s.viewers[i+1:]...)
			break
		}
	}
	s.group.Remove(v)
	s.comp.Forget(v.ID())
	delete(s.slots, v.ID())
}

// Viewers returns the open viewers in opening order.
func (s *Session) Viewers() []*player.Viewer {
	return append([]*player.Viewer(nil), s.viewers...)
}

// Viewer finds an open viewer by ID.
func (s *Session) Viewer(id string) (*player.Viewer, error) {
	for _, v := range s.viewers {
		if v.ID() == id {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownViewer, id)
}

// ViewerAt returns the i-th open viewer, counting from 0.
func (s *Session) ViewerAt(i int) (*player.Viewer, error) {
	if i < 0 || i >= len(s.viewers) {
		return nil, fmt.Errorf("%w: #%d", ErrUnknownViewer, i+1)
	}
	return s.viewers[i], nil
}

// Slot returns the 1-based number a viewer was opened as.
func (s *Session) Slot(v *player.Viewer) int {
	return s.slots[v.ID()]
}

// Resolve finds a viewer by slot number, full ID or unique ID prefix.
func (s *Session) Resolve(ref string) (*player.Viewer, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		for _, v := range s.viewers {
			if s.slots[v.ID()] == n {
				return v, nil
			}
		}
		return nil, fmt.Errorf("%w: #%d", ErrUnknownViewer, n)
	}
	var match *player.Viewer
	for _, v := range s.viewers {
		if strings.HasPrefix(v.ID(), ref) {
			if match != nil {
				return nil, fmt.Errorf("%w: ambiguous id %q", ErrUnknownViewer, ref)
			}
			match = v
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownViewer, ref)
	}
	return match, nil
}

// Close closes one viewer. Its group membership and compositor references
// are dropped by the close hook.
func (s *Session) Close(id string) error {
	v, err := s.Viewer(id)
	if err != nil {
		return err
	}
	v.Close()
	return nil
}

// CloseAll closes every viewer.
func (s *Session) CloseAll() {
	for _, v := range s.Viewers() {
		v.Close()
	}
	s.comp.Deactivate()
}

// Len returns the number of open viewers.
func (s *Session) Len() int {
	return len(s.viewers)
}

// SetSyncEnabled turns synchronized playback on or off. Enabling adds every
// open viewer to the group; disabling empties it.
func (s *Session) SetSyncEnabled(on bool) {
	if on == s.syncEnabled {
		return
	}
	s.syncEnabled = on
	if on {
		for _, v := range s.viewers {
			s.group.Add(v)
		}
		s.logger.Info("Sync enabled for %d viewers", s.group.Len())
		return
	}
	s.group.Reset()
	s.logger.Info("Sync disabled")
}

// SyncEnabled reports whether new viewers join the group.
func (s *Session) SyncEnabled() bool {
	return s.syncEnabled
}

// Group returns the session's sync group.
func (s *Session) Group() *syncgroup.Group {
	return s.group
}

// SetMaster makes the viewer with id lead the group.
func (s *Session) SetMaster(id string) error {
	v, err := s.Viewer(id)
	if err != nil {
		return err
	}
	return s.group.SetMaster(v)
}

// Compositor returns the session's compositor.
func (s *Session) Compositor() *compositor.Compositor {
	return s.comp
}

// ConfigureOverlay blends overlayID onto mainID with the given mode and
// opacity, replacing any previous overlay.
func (s *Session) ConfigureOverlay(mainID, overlayID string, mode compositor.Mode, opacity float64) error {
	main, err := s.Viewer(mainID)
	if err != nil {
		return err
	}
	over, err := s.Viewer(overlayID)
	if err != nil {
		return err
	}
	s.comp.Deactivate()
	s.comp.SetMain(main)
	s.comp.SetOverlay(over)
	s.comp.SetMode(mode)
	s.comp.SetOpacity(opacity)
	if err := s.comp.Activate(); err != nil {
		return err
	}
	s.logger.Info("Overlay %s onto %s (%s, %.0f%%)", over.Name(), main.Name(), mode, s.comp.Opacity()*100)
	return nil
}

// ToggleOverlay switches the compositor on or off. Turning it on requires
// both sources to still be open.
func (s *Session) ToggleOverlay() error {
	if s.comp.Active() {
		s.comp.Deactivate()
		return nil
	}
	return s.comp.Activate()
}

var (
	_ compositor.Source = (*player.Viewer)(nil)
	_ syncgroup.Member  = (*player.Viewer)(nil)
)
