package generator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tomrplummer/blue-eyes/internal/utils"
)

// Action describes what writing an artifact does to disk.
type Action int

const (
	Create Action = iota
	Overwrite
	Update
	Skip
)

func (a Action) String() string {
	switch a {
	case Overwrite:
		return "overwrite"
	case Update:
		return "update"
	case Skip:
		return "identical"
	default:
		return "create"
	}
}

// Artifact is one rendered file waiting to be written.
type Artifact struct {
	Template string // template id, empty for shared files
	Path     string
	Content  []byte
	Action   Action
}

// Writer persists rendered artifacts.
type Writer struct {
	overwrite bool
	logger    *zap.Logger
}

// NewWriter creates a Writer. With overwrite disabled, an existing target
// is ErrAlreadyExists.
func NewWriter(overwrite bool, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{overwrite: overwrite, logger: logger}
}

// Check resolves the action of every artifact without writing anything.
func (w *Writer) Check(artifacts []*Artifact) error {
	for _, a := range artifacts {
		exists, err := utils.FileExists(a.Path)
		if err != nil {
			return err
		}
		if !exists {
			a.Action = Create
			continue
		}
		if !w.overwrite {
			return fmt.Errorf("%w: %s (use --force to overwrite)", ErrAlreadyExists, a.Path)
		}
		a.Action = Overwrite
	}
	return nil
}

// Write persists one artifact atomically.
func (w *Writer) Write(a *Artifact) error {
	if a.Action == Skip {
		return nil
	}
	if err := utils.WriteFileAtomic(a.Path, a.Content, 0644); err != nil {
		return err
	}
	w.logger.Debug("wrote artifact",
		zap.String("path", a.Path),
		zap.String("template", a.Template),
		zap.Stringer("action", a.Action),
	)
	return nil
}

// WriteAll writes artifacts in order and stops at the first failure. Files
// written before the failure are left in place.
func (w *Writer) WriteAll(artifacts []*Artifact) error {
	for i, a := range artifacts {
		if err := w.Write(a); err != nil {
			return fmt.Errorf("failed to write %s (%d of %d files already written, not rolled back): %w",
				a.Path, i, len(artifacts), err)
		}
	}
	return nil
}
