package anchor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/marinerstack/mariner-guard/internal/models"
	"github.com/marinerstack/mariner-guard/internal/utils"
)

// Store persists the anchor record across process restarts.
type Store interface {
	Load() (Record, error)
	Save(Record) error
}

// persistedRecord is the on-disk layout: state name, nullable position,
// radius in metres, nullable rode/depth, and RFC 3339 timestamps.
type persistedRecord struct {
	State       string           `json:"state"`
	Position    *models.Position `json:"position"`
	Radius      float64          `json:"radius"`
	RodeLength  *float64         `json:"rode_length"`
	AnchorDepth *float64         `json:"anchor_depth"`
	DroppedAt   *string          `json:"dropped_at"`
	RaisedAt    *string          `json:"raised_at"`
}

// FileStore keeps the record in a single JSON file, written atomically.
type FileStore struct {
	path          string
	defaultRadius float64
	logger        *slog.Logger
}

// NewFileStore constructs a store at the given path. The default radius seeds
// the fallback record when no usable file exists.
func NewFileStore(path string, defaultRadius float64, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, defaultRadius: defaultRadius, logger: logger}
}

// Load reads the persisted record. A missing or corrupt file is non-fatal:
// the default raised record is returned so the process can still start.
func (s *FileStore) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("no anchor state file, starting raised", slog.String("path", s.path))
		} else {
			s.logger.Warn("anchor state unreadable, starting raised", slog.String("path", s.path), slog.Any("error", err))
		}
		return DefaultRecord(s.defaultRadius), nil
	}

	var persisted persistedRecord
	if err := json.Unmarshal(data, &persisted); err != nil {
		s.logger.Warn("anchor state corrupt, starting raised", slog.String("path", s.path), slog.Any("error", err))
		return DefaultRecord(s.defaultRadius), nil
	}

	rec, err := fromPersisted(persisted)
	if err != nil {
		s.logger.Warn("anchor state invalid, starting raised", slog.String("path", s.path), slog.Any("error", err))
		return DefaultRecord(s.defaultRadius), nil
	}
	if rec.RadiusMeters <= 0 {
		rec.RadiusMeters = s.defaultRadius
	}
	if rec.RadiusMeters <= 0 {
		rec.RadiusMeters = defaultAlarmRadiusMeters
	}
	return rec, nil
}

// Save writes the record through a temp file and rename so a crash mid-write
// cannot corrupt the previous state.
func (s *FileStore) Save(rec Record) error {
	payload, err := json.MarshalIndent(toPersisted(rec), "", "  ")
	if err != nil {
		return fmt.Errorf("encode anchor state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write anchor state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit anchor state: %w", err)
	}
	return nil
}

func toPersisted(rec Record) persistedRecord {
	out := persistedRecord{
		State:       string(rec.State),
		Radius:      rec.RadiusMeters,
		RodeLength:  rec.RodeLengthMeters,
		AnchorDepth: rec.AnchorDepthMeters,
	}
	if rec.Position != nil {
		pos := *rec.Position
		out.Position = &pos
	}
	if rec.DroppedAt != nil {
		v := utils.FormatRFC3339(rec.DroppedAt)
		out.DroppedAt = &v
	}
	if rec.RaisedAt != nil {
		v := utils.FormatRFC3339(rec.RaisedAt)
		out.RaisedAt = &v
	}
	return out
}

func fromPersisted(p persistedRecord) (Record, error) {
	state := State(p.State)
	if !ValidState(state) {
		return Record{}, fmt.Errorf("unknown anchor state %q", p.State)
	}

	rec := Record{
		State:             state,
		RadiusMeters:      p.Radius,
		RodeLengthMeters:  p.RodeLength,
		AnchorDepthMeters: p.AnchorDepth,
	}
	if p.Position != nil {
		pos := *p.Position
		rec.Position = &pos
	}
	if p.DroppedAt != nil && *p.DroppedAt != "" {
		t, err := utils.ParseRFC3339(*p.DroppedAt)
		if err != nil {
			return Record{}, fmt.Errorf("dropped_at: %w", err)
		}
		rec.DroppedAt = &t
	}
	if p.RaisedAt != nil && *p.RaisedAt != "" {
		t, err := utils.ParseRFC3339(*p.RaisedAt)
		if err != nil {
			return Record{}, fmt.Errorf("raised_at: %w", err)
		}
		rec.RaisedAt = &t
	}
	return rec, nil
}
