package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	t func(string) string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.t = t
	}
}

// NewMarkdownFormatter creates a formatter. Labels are English unless a
// translator is supplied.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{t: func(s string) string { return s }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder
	t := f.t

	fmt.Fprintf(&b, "# %s\n\n", t("Playback Summary"))
	fmt.Fprintf(&b, "- %s: %s\n", t("Generated"), s.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- %s: %s\n", t("Elapsed"), s.Elapsed.Round(time.Millisecond))
	sync := t("Off")
	if s.Sync {
		sync = t("On")
	}
	fmt.Fprintf(&b, "- %s: %s\n\n", t("Sync"), sync)

	fmt.Fprintf(&b, "## %s\n\n", t("Viewers"))
	if len(s.Viewers) == 0 {
		fmt.Fprintf(&b, "%s\n\n", t("None"))
	} else {
		fmt.Fprintf(&b, "| # | %s | %s | %s | %s | %s | %s | %s |\n",
			t("File"), t("Role"), t("Media"), t("Frame"), t("Rate"), t("State"), t("Decoded"))
		b.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, v := range s.Viewers {
			role := v.Role
			if role == "" {
				role = "-"
			} else {
				role = t(role)
			}
			state := t("paused")
			if v.Playing {
				state = t("playing")
			}
			media := fmt.Sprintf("%s %dx%d", v.Kind, v.Width, v.Height)
			if v.Codec != "" {
				media += " " + v.Codec
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %d / %d | %.2f fps x%.2g | %s | %s |\n",
				v.Slot, v.Name, role, media, v.CurrentFrame, max(v.FrameCount-1, 0),
				v.Rate, v.Speed, state, humanize.Comma(v.Produced))
		}
		b.WriteString("\n")

		var waits, wraps int64
		for _, v := range s.Viewers {
			waits += v.Waits
			wraps += v.Wraps
		}
		fmt.Fprintf(&b, "%s: %s, %s: %s\n\n",
			t("Buffer waits"), humanize.Comma(waits), t("Loops"), humanize.Comma(wraps))
	}

	if o := s.Overlay; o != nil {
		fmt.Fprintf(&b, "## %s\n\n", t("Overlay"))
		active := t("Off")
		if o.Active {
			active = t("On")
		}
		fmt.Fprintf(&b, "- %s: #%d %s #%d\n", t("Sources"), o.OverlaySlot, t("over"), o.MainSlot)
		fmt.Fprintf(&b, "- %s: %s, %.0f%%\n", t("Blend"), o.Mode, o.Opacity*100)
		fmt.Fprintf(&b, "- %s: %s\n", t("State"), active)
		fmt.Fprintf(&b, "- %s: %s\n", t("Blended frames"), humanize.Comma(o.Blended))
	}

	return b.String()
}

var _ Formatter = (*MarkdownFormatter)(nil)
