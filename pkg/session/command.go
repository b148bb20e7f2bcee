package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/user/reelsync/pkg/compositor"
	"github.com/user/reelsync/pkg/player"
)

// Usage lists the console commands.
const Usage = `commands:
  open PATH...                 open more media
  play [N] | pause [N] | toggle [N]
  next [N] | prev [N]          step one frame
  seek N INDEX                 jump to a frame
  rate N FPS | speed N X       frame rate, speed multiplier
  sync on|off                  synchronized playback
  master N                     choose the sync master
  overlay MAIN OVER [MODE] [OPACITY]
  overlay on|off               toggle the overlay
  blend MODE | opacity X       overlay settings
  close N                      close a viewer
  status                       list viewers`

// Execute runs one console command. N is a viewer's slot number or an ID
// prefix; commands with an optional N apply to every viewer when it is
// omitted.
func (s *Session) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "open":
		if len(args) == 0 {
			return badCommand(line, "missing path")
		}
		_, err := s.Open(args...)
		return err

	case "play":
		return s.each(args, line, (*player.Viewer).Play)
	case "pause":
		return s.each(args, line, (*player.Viewer).Pause)
	case "toggle":
		return s.each(args, line, (*player.Viewer).TogglePlayback)
	case "next":
		return s.eachErr(args, line, (*player.Viewer).NextFrame)
	case "prev":
		return s.eachErr(args, line, (*player.Viewer).PrevFrame)

	case "seek":
		v, n, err := s.viewerAndInt(args, line)
		if err != nil {
			return err
		}
		return v.SeekTo(n)

	case "rate", "speed":
		v, x, err := s.viewerAndFloat(args, line)
		if err != nil {
			return err
		}
		if cmd == "rate" {
			return v.SetRate(x)
		}
		return v.SetSpeed(x)

	case "sync":
		on, err := parseOnOff(args, line)
		if err != nil {
			return err
		}
		s.SetSyncEnabled(on)
		return nil

	case "master":
		if len(args) != 1 {
			return badCommand(line, "expected viewer")
		}
		v, err := s.Resolve(args[0])
		if err != nil {
			return err
		}
		return s.SetMaster(v.ID())

	case "overlay":
		return s.overlayCommand(args, line)

	case "blend":
		if len(args) != 1 {
			return badCommand(line, "expected mode")
		}
		mode, err := compositor.ParseMode(args[0])
		if err != nil {
			return badCommand(line, err.Error())
		}
		s.comp.SetMode(mode)
		return nil

	case "opacity":
		if len(args) != 1 {
			return badCommand(line, "expected opacity")
		}
		a, err := parseOpacity(args[0])
		if err != nil {
			return badCommand(line, err.Error())
		}
		s.comp.SetOpacity(compositor.QuantizeOpacity(a, s.opts.OpacityStep))
		return nil

	case "close":
		if len(args) != 1 {
			return badCommand(line, "expected viewer")
		}
		v, err := s.Resolve(args[0])
		if err != nil {
			return err
		}
		v.Close()
		return nil

	case "status":
		s.WriteStatus()
		return nil

	case "help":
		fmt.Fprintln(s.deps.Out, Usage)
		return nil
	}
	return badCommand(line, "unknown command")
}

func (s *Session) overlayCommand(args []string, line string) error {
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "on":
			return s.comp.Activate()
		case "off":
			s.comp.Deactivate()
			return nil
		}
	}
	if len(args) < 2 || len(args) > 4 {
		return badCommand(line, "expected MAIN OVER [MODE] [OPACITY]")
	}
	main, err := s.Resolve(args[0])
	if err != nil {
		return err
	}
	over, err := s.Resolve(args[1])
	if err != nil {
		return err
	}
	mode, opacity := s.comp.Mode(), s.comp.Opacity()
	if len(args) >= 3 {
		if mode, err = compositor.ParseMode(args[2]); err != nil {
			return badCommand(line, err.Error())
		}
	}
	if len(args) == 4 {
		a, err := parseOpacity(args[3])
		if err != nil {
			return badCommand(line, err.Error())
		}
		opacity = compositor.QuantizeOpacity(a, s.opts.OpacityStep)
	}
	return s.ConfigureOverlay(main.ID(), over.ID(), mode, opacity)
}

func (s *Session) targets(args []string, line string) ([]*player.Viewer, error) {
	switch len(args) {
	case 0:
		return s.Viewers(), nil
	case 1:
		v, err := s.Resolve(args[0])
		if err != nil {
			return nil, err
		}
		return []*player.Viewer{v}, nil
	default:
		return nil, badCommand(line, "too many arguments")
	}
}

func (s *Session) each(args []string, line string, fn func(*player.Viewer)) error {
	vs, err := s.targets(args, line)
	if err != nil {
		return err
	}
	for _, v := range vs {
		fn(v)
	}
	return nil
}

func (s *Session) eachErr(args []string, line string, fn func(*player.Viewer) error) error {
	vs, err := s.targets(args, line)
	if err != nil {
		return err
	}
	for _, v := range vs {
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) viewerAndInt(args []string, line string) (*player.Viewer, int, error) {
	if len(args) != 2 {
		return nil, 0, badCommand(line, "expected viewer and index")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, 0, badCommand(line, "index must be an integer")
	}
	v, err := s.Resolve(args[0])
	return v, n, err
}

func (s *Session) viewerAndFloat(args []string, line string) (*player.Viewer, float64, error) {
	if len(args) != 2 {
		return nil, 0, badCommand(line, "expected viewer and value")
	}
	x, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "x"), 64)
	if err != nil {
		return nil, 0, badCommand(line, "value must be a number")
	}
	v, err := s.Resolve(args[0])
	return v, x, err
}

// WriteStatus prints one line per viewer to the session output.
func (s *Session) WriteStatus() {
	out := s.deps.Out
	if len(s.viewers) == 0 {
		fmt.Fprintln(out, "no viewers")
		return
	}
	for _, v := range s.viewers {
		st := v.Snapshot()
		role := ""
		switch {
		case s.group.IsMaster(v):
			role = " [master]"
		case s.group.Contains(v):
			role = " [follower]"
		}
		state := "paused"
		if st.Playing {
			state = "playing"
		}
		stats := v.Stats()
		fmt.Fprintf(out, "#%d %s%s frame %d/%d %.1f fps x%.2g %s, %d buffered, %s decoded\n",
			s.Slot(v), v.Name(), role, st.CurrentFrame, max(st.TotalFrames-1, 0),
			st.Rate, st.Speed, state, v.Buffered(), humanize.Comma(stats.Produced))
	}
	if c := s.comp; c.Main() != nil && c.Overlay() != nil {
		state := "off"
		if c.Active() {
			state = "on"
		}
		fmt.Fprintf(out, "overlay %s: #%d over #%d, %s %.0f%%\n",
			state, s.slots[c.Overlay().ID()], s.slots[c.Main().ID()], c.Mode(), c.Opacity()*100)
	}
}

func parseOnOff(args []string, line string) (bool, error) {
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "on", "true", "1":
			return true, nil
		case "off", "false", "0":
			return false, nil
		}
	}
	return false, badCommand(line, "expected on or off")
}

// parseOpacity accepts a fraction ("0.3") or a percentage ("30%").
func parseOpacity(s string) (float64, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid opacity %q", s)
		}
		return v / 100, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid opacity %q", s)
	}
	return v, nil
}

func badCommand(line, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrBadCommand, strings.TrimSpace(line), reason)
}
