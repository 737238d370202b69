package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Ksonar262/RFID/config"
	"github.com/Ksonar262/RFID/swarm"
)

// Formats selects which report files WriteResult produces.
type Formats struct {
	CSV  bool
	PNG  bool
	HTML bool
}

// Writer handles structured run output in a single directory.
type Writer struct {
	dir string
}

// NewWriter creates dir if needed.  Returns nil if dir is empty (output
// disabled); all methods are no-ops on a nil Writer.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

func (w *Writer) Dir() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// Path joins name onto the output directory.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.Dir(), name)
}

// WriteConfig saves the effective configuration as YAML.
func (w *Writer) WriteConfig(cfg *config.Config) error {
	if w == nil {
		return nil
	}
	return cfg.WriteYAML(w.Path("config.yaml"))
}

func (w *Writer) create(name string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(w.Path(name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", name, cerr)
		}
	}()
	return fn(f)
}

// WriteResult writes the selected reports for res and returns the paths
// written.
func (w *Writer) WriteResult(res *swarm.Result, f Formats) ([]string, error) {
	if w == nil {
		return nil, nil
	}
	var written []string
	add := func(name string, err error) error {
		if err != nil {
			return err
		}
		written = append(written, w.Path(name))
		return nil
	}

	if f.CSV {
		err := w.create("history.csv", func(out io.Writer) error { return WriteHistoryCSV(out, res.History) })
		if err := add("history.csv", err); err != nil {
			return written, err
		}
		err = w.create("placement.csv", func(out io.Writer) error { return WritePlacementCSV(out, res.Best) })
		if err := add("placement.csv", err); err != nil {
			return written, err
		}
		if len(res.Elite) > 0 {
			err = w.create("elite.csv", func(out io.Writer) error { return WriteEliteCSV(out, res.Elite) })
			if err := add("elite.csv", err); err != nil {
				return written, err
			}
		}
	}

	if f.PNG {
		if err := add("coverage.png", CoveragePNG(w.Path("coverage.png"), res.Coverage, res.Best)); err != nil {
			return written, err
		}
		if err := add("overlap.png", OverlapPNG(w.Path("overlap.png"), res.Overlap, res.Best)); err != nil {
			return written, err
		}
		if err := add("fitness.png", FitnessPNG(w.Path("fitness.png"), res.History)); err != nil {
			return written, err
		}
	}

	if f.HTML {
		err := w.create("report.html", func(out io.Writer) error { return HTML(out, res) })
		if err := add("report.html", err); err != nil {
			return written, err
		}
	}
	return written, nil
}
