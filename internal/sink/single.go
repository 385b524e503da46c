package sink

import (
	"fmt"
	"os"

	"github.com/gggpa/tickscrape/pkg/model"
)

const header = "TIME,TYPE,VALUE,SIZE\n"

// Single appends every tick to one file, no rotation. A header row is
// written when the file is empty, so repeated runs accumulate rows
// under a single header.
type Single struct {
	file *os.File
}

func NewSingle(path string) (*Single, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open %q: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if _, err := file.WriteString(header); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return &Single{file: file}, nil
}

func (s *Single) Write(tick model.Tick) error {
	line, err := formatLine(tick)
	if err != nil {
		return err
	}
	_, err = s.file.WriteString(line)
	return err
}

func (s *Single) Close() error {
	return s.file.Close()
}
