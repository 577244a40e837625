package console

import (
	"fmt"
	"math"
	"strings"

	"astrox/internal/domain/model"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

func colorize(s, c string) string { return c + s + ansiReset }

type Formatter struct {
	Color bool
}

func NewFormatter(color bool) *Formatter {
	return &Formatter{Color: color}
}

func (f *Formatter) paint(s, c string) string {
	if !f.Color {
		return s
	}
	return colorize(s, c)
}

// Degrees renders a sign position as 12°34'. Minutes are truncated so the
// output never reaches 30° inside a sign.
func Degrees(pos float64) string {
	total := int(math.Floor(pos*60 + 1e-6))
	return fmt.Sprintf("%2d°%02d'", total/60, total%60)
}

func (f *Formatter) Chart(c *model.Chart) string {
	var sb strings.Builder

	sb.WriteString(f.paint("[ASTROX] ", ansiDim))
	fmt.Fprintf(&sb, "%s  %s  %s", c.Name, c.Kind, c.Instant.UTC().Format("2006-01-02 15:04 MST"))
	if c.Location.Name != "" {
		fmt.Fprintf(&sb, "  %s", c.Location.Name)
	}
	fmt.Fprintf(&sb, "  (%.4f, %.4f)\n", c.Location.Latitude, c.Location.Longitude)
	sb.WriteString(f.paint(fmt.Sprintf("  %s, house system %s, %s", c.Context.Zodiac, c.Context.HouseSystem, c.Context.Perspective), ansiDim))
	if c.Context.SiderealMode != "" {
		sb.WriteString(f.paint(" "+string(c.Context.SiderealMode), ansiDim))
	}
	sb.WriteString("\n")

	for _, p := range c.Points {
		retro := "  "
		if p.Retrograde {
			retro = f.paint(" R", ansiRed)
		}
		fmt.Fprintf(&sb, "  %-16s %s %s%s  house %2d  speed %+8.4f\n",
			p.ID, Degrees(p.SignPosition), p.Sign.Name, retro, p.House, p.Speed)
	}

	sb.WriteString(f.paint("  cusps", ansiDim))
	for i, cusp := range c.Cusps {
		fmt.Fprintf(&sb, " %d:%.2f", i+1, cusp)
	}
	sb.WriteString("\n")

	if c.Phase != nil {
		fmt.Fprintf(&sb, "  lunar phase %s %s (%d/28)\n", c.Phase.Emoji, c.Phase.Name, c.Phase.MoonPhase)
	}
	if len(c.Skipped) > 0 {
		sb.WriteString(f.paint(fmt.Sprintf("  skipped %v\n", c.Skipped), ansiYellow))
	}
	return sb.String()
}

func (f *Formatter) movement(m model.Movement) string {
	switch m {
	case model.Applying:
		return f.paint(string(m), ansiGreen)
	case model.Separating:
		return f.paint(string(m), ansiRed)
	default:
		return f.paint(string(m), ansiYellow)
	}
}

func (f *Formatter) Aspects(title string, aspects []model.AspectResult) string {
	var sb strings.Builder
	sb.WriteString(f.paint("[ASTROX] ", ansiDim))
	fmt.Fprintf(&sb, "%s (%d)\n", title, len(aspects))
	for _, a := range aspects {
		p1, p2 := string(a.P1), string(a.P2)
		if a.P1Owner != a.P2Owner {
			p1 = a.P1Owner + "." + p1
			p2 = a.P2Owner + "." + p2
		}
		name := a.Aspect
		if !a.Major {
			name = f.paint(name, ansiDim)
		}
		fmt.Fprintf(&sb, "  %-24s %-16s %-24s orb %+6.2f  %s\n", p1, name, p2, a.SignedOrb, f.movement(a.Movement))
	}
	return sb.String()
}

func (f *Formatter) Overlay(title string, entries []model.HouseOverlayEntry) string {
	var sb strings.Builder
	sb.WriteString(f.paint("[ASTROX] ", ansiDim))
	sb.WriteString(title + "\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "  %s.%-16s house %2d -> %s house %2d\n", e.Owner, e.Point, e.OwnHouse, e.ProjectedOwner, e.ProjectedHouse)
	}
	return sb.String()
}
