package console

import (
	"fmt"
	"io"
	"os"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
)

type Sink struct {
	out io.Writer
	f   *Formatter
}

func NewSink() port.Sink { return &Sink{out: os.Stdout, f: NewFormatter(true)} }

// NewPlainSink writes uncolored output to w.
func NewPlainSink(w io.Writer) *Sink { return &Sink{out: w, f: NewFormatter(false)} }

func (s *Sink) WriteChart(c *model.Chart) error {
	_, err := fmt.Fprint(s.out, s.f.Chart(c))
	return err
}

func (s *Sink) WriteAspects(title string, aspects []model.AspectResult) error {
	_, err := fmt.Fprint(s.out, s.f.Aspects(title, aspects))
	return err
}

func (s *Sink) WriteOverlay(title string, entries []model.HouseOverlayEntry) error {
	_, err := fmt.Fprint(s.out, s.f.Overlay(title, entries))
	return err
}

func (s *Sink) NewLine() error {
	_, err := fmt.Fprint(s.out, "\n")
	return err
}
