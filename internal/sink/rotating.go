package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gggpa/tickscrape/pkg/model"
)

// Rotating appends ticks to per-day csv files named
// {security-with-dashes}_{YYYY-MM-DD}.csv. The file is opened lazily on
// the first tick and swapped whenever a tick's calendar day differs
// from the open one. At most one handle is open at any time.
type Rotating struct {
	dir  string
	stem string

	day  string
	file *os.File
}

func NewRotating(dir, security string) *Rotating {
	return &Rotating{
		dir:  dir,
		stem: strings.ReplaceAll(security, " ", "-"),
	}
}

func (s *Rotating) Write(tick model.Tick) error {
	day := tick.Day()
	if day == "" {
		return fmt.Errorf("tick timestamp %q carries no date", tick.Timestamp)
	}

	if day != s.day {
		if err := s.rotate(day); err != nil {
			return err
		}
	}

	line, err := formatLine(tick)
	if err != nil {
		return err
	}
	_, err = s.file.WriteString(line)
	return err
}

func (s *Rotating) rotate(day string) error {
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			return fmt.Errorf("unable to close %q: %w", s.file.Name(), err)
		}
		s.file = nil
	}

	name := filepath.Join(s.dir, s.stem+"_"+day+".csv")
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("unable to open %q: %w", name, err)
	}

	s.file = file
	s.day = day
	return nil
}

func (s *Rotating) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
