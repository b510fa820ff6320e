package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"hubexport/pkg/logger"
)

// Phase names one half of a resource export
type Phase string

const (
	PhaseData         Phase = "data"
	PhaseAssociations Phase = "associations"
)

// Kind discriminates what a checkpoint holds: an opaque API cursor for the
// data phase, or an index into the locally stored id list for the
// associations phase.
type Kind string

const (
	KindCursor Kind = "cursor"
	KindIndex  Kind = "index"
)

// formatHeader versions the on-disk checkpoint format. Files are plain text
// so they stay portable and inspectable, and corruption is detectable.
const formatHeader = "hubexport-checkpoint/v1"

// Checkpoint is the durable resume state for one (resource, phase). It is
// only valid at page boundaries and is deleted when the phase completes.
type Checkpoint struct {
	Kind   Kind
	Cursor string
	Index  int
}

// Store persists checkpoints and completion markers under a directory, one
// file per (resource, phase). File absence is the "no checkpoint" and "not
// complete" signal.
type Store struct {
	dir    string
	logger logger.Logger
}

// NewStore creates a checkpoint store rooted at dir
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	return &Store{
		dir:    dir,
		logger: logger.GetLogger(),
	}, nil
}

func (s *Store) checkpointPath(resource string, phase Phase) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.checkpoint", resource, phase))
}

func (s *Store) markerPath(resource string, phase Phase) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.completed", resource, phase))
}

// Load reads the persisted checkpoint for a (resource, phase). A missing
// file returns (nil, nil). A corrupt or unparseable file fails closed: it is
// treated as "no checkpoint" so the pipeline restarts the phase from the
// beginning instead of crashing.
func (s *Store) Load(resource string, phase Phase) (*Checkpoint, error) {
	data, err := os.ReadFile(s.checkpointPath(resource, phase))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	cp, err := parse(data)
	if err != nil {
		s.logger.WarnWithFields("discarding corrupt checkpoint", map[string]interface{}{
			"resource": resource,
			"phase":    string(phase),
			"error":    err.Error(),
		})
		return nil, nil
	}

	s.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"resource": resource,
		"phase":    string(phase),
		"cursor":   cp.Cursor,
		"index":    cp.Index,
	})

	return cp, nil
}

func parse(data []byte) (*Checkpoint, error) {
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		return nil, fmt.Errorf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != formatHeader {
		return nil, fmt.Errorf("unknown format header %q", lines[0])
	}

	switch Kind(lines[1]) {
	case KindCursor:
		if lines[2] == "" {
			return nil, fmt.Errorf("empty cursor value")
		}
		return &Checkpoint{Kind: KindCursor, Cursor: lines[2]}, nil
	case KindIndex:
		index, err := strconv.Atoi(lines[2])
		if err != nil || index < 0 {
			return nil, fmt.Errorf("invalid index value %q", lines[2])
		}
		return &Checkpoint{Kind: KindIndex, Index: index}, nil
	default:
		return nil, fmt.Errorf("unknown checkpoint kind %q", lines[1])
	}
}

// SaveCursor persists a data-phase cursor checkpoint. The write is atomic
// and durable before returning; a failure here must abort the run so resume
// state is never silently lost.
func (s *Store) SaveCursor(resource string, phase Phase, cursor string) error {
	return s.save(resource, phase, &Checkpoint{Kind: KindCursor, Cursor: cursor})
}

// SaveIndex persists an association-phase index checkpoint
func (s *Store) SaveIndex(resource string, phase Phase, index int) error {
	return s.save(resource, phase, &Checkpoint{Kind: KindIndex, Index: index})
}

func (s *Store) save(resource string, phase Phase, cp *Checkpoint) error {
	var value string
	switch cp.Kind {
	case KindCursor:
		value = cp.Cursor
	case KindIndex:
		value = strconv.Itoa(cp.Index)
	default:
		return fmt.Errorf("unknown checkpoint kind %q", cp.Kind)
	}

	content := fmt.Sprintf("%s\n%s\n%s\n", formatHeader, cp.Kind, value)
	path := s.checkpointPath(resource, phase)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	// Ensure data is on disk before the next page fetch begins
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	// Atomically replace the old checkpoint file
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	s.logger.DebugWithFields("checkpoint saved", map[string]interface{}{
		"resource": resource,
		"phase":    string(phase),
		"cursor":   cp.Cursor,
		"index":    cp.Index,
	})

	return nil
}

// Clear removes the checkpoint for a (resource, phase). Missing files are
// not an error.
func (s *Store) Clear(resource string, phase Phase) error {
	if err := os.Remove(s.checkpointPath(resource, phase)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// IsComplete checks the completion marker for a (resource, phase)
func (s *Store) IsComplete(resource string, phase Phase) bool {
	_, err := os.Stat(s.markerPath(resource, phase))
	return err == nil
}

// MarkComplete records that a phase fully drained. Only called when the
// phase reached the end of the stream with no record limit applied.
func (s *Store) MarkComplete(resource string, phase Phase) error {
	content := fmt.Sprintf("Completed on %s\n", time.Now().Format(time.RFC3339))
	if err := os.WriteFile(s.markerPath(resource, phase), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write completion marker: %w", err)
	}

	s.logger.InfoWithFields("phase marked complete", map[string]interface{}{
		"resource": resource,
		"phase":    string(phase),
	})

	return nil
}

// ClearAll removes every checkpoint and completion marker for the given
// resources, both phases. Called after a clean full run so the next run
// starts fresh.
func (s *Store) ClearAll(resources []string) error {
	for _, resource := range resources {
		for _, phase := range []Phase{PhaseData, PhaseAssociations} {
			if err := s.Clear(resource, phase); err != nil {
				return err
			}
			if err := os.Remove(s.markerPath(resource, phase)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete completion marker: %w", err)
			}
		}
	}
	return nil
}
