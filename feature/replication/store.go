package replication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"bucket-diff/core/database"
	"bucket-diff/core/diff"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Checkpoint is the persisted progress of one replication pair.
type Checkpoint struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	PairKey   string `gorm:"size:512;uniqueIndex;not null" json:"pair_key"`
	State     string `gorm:"type:longtext" json:"-"`
	Rounds    int    `json:"rounds"`
	Done      bool   `json:"done"`
	Failed    bool   `json:"failed"`
	LastError string `gorm:"type:text" json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name used by Checkpoint.
func (Checkpoint) TableName() string {
	return "diff_checkpoints"
}

// DiffState decodes the stored diff state. An empty checkpoint starts a new diff.
func (c *Checkpoint) DiffState() (diff.State, error) {
	var state diff.State
	if c == nil || c.State == "" {
		return state, nil
	}
	if err := json.Unmarshal([]byte(c.State), &state); err != nil {
		return state, fmt.Errorf("corrupt checkpoint %s: %w", c.PairKey, err)
	}
	return state, nil
}

// Checkpoints persists diff state between rounds.
type Checkpoints interface {
	// Load returns the checkpoint of a pair, or nil when none exists.
	Load(ctx context.Context, pairKey string) (*Checkpoint, error)
	// Save stores the state after a successful round and clears any recorded error.
	Save(ctx context.Context, pairKey string, state diff.State) error
	// RecordError stores a failed round. Fatal errors block further rounds until Reset.
	RecordError(ctx context.Context, pairKey string, roundErr error, fatal bool) error
	// Reset deletes the checkpoint so the next round starts over.
	Reset(ctx context.Context, pairKey string) error
}

var checkpointColumns = []string{"pair_key", "state", "rounds", "done", "failed", "last_error", "updated_at"}

// CheckpointStore keeps checkpoints in the database.
type CheckpointStore struct {
	db *gorm.DB
}

// NewCheckpointStore creates a database-backed checkpoint store.
func NewCheckpointStore(db *gorm.DB) *CheckpointStore {
	return &CheckpointStore{db: db}
}

// Migrate creates or updates the checkpoint table.
func (s *CheckpointStore) Migrate() error {
	return s.db.AutoMigrate(&Checkpoint{})
}

// Verify returns the checkpoint columns missing from the database.
func (s *CheckpointStore) Verify() ([]string, error) {
	return database.MissingColumns(s.db, Checkpoint{}.TableName(), checkpointColumns)
}

// Load implements Checkpoints.
func (s *CheckpointStore) Load(ctx context.Context, pairKey string) (*Checkpoint, error) {
	var cp Checkpoint
	err := s.db.WithContext(ctx).Where("pair_key = ?", pairKey).First(&cp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint %s: %w", pairKey, err)
	}
	return &cp, nil
}

// Save implements Checkpoints.
func (s *CheckpointStore) Save(ctx context.Context, pairKey string, state diff.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint %s: %w", pairKey, err)
	}

	cp := Checkpoint{
		PairKey: pairKey,
		State:   string(raw),
		Rounds:  state.Round,
		Done:    state.Done(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pair_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "rounds", "done", "failed", "last_error", "updated_at"}),
	}).Create(&cp).Error
	if err != nil {
		return fmt.Errorf("failed to save checkpoint %s: %w", pairKey, err)
	}
	return nil
}

// RecordError implements Checkpoints.
func (s *CheckpointStore) RecordError(ctx context.Context, pairKey string, roundErr error, fatal bool) error {
	cp := Checkpoint{PairKey: pairKey, Failed: fatal, LastError: roundErr.Error()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pair_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"failed", "last_error", "updated_at"}),
	}).Create(&cp).Error
	if err != nil {
		return fmt.Errorf("failed to record error for %s: %w", pairKey, err)
	}
	return nil
}

// Reset implements Checkpoints.
func (s *CheckpointStore) Reset(ctx context.Context, pairKey string) error {
	if err := s.db.WithContext(ctx).Where("pair_key = ?", pairKey).Delete(&Checkpoint{}).Error; err != nil {
		return fmt.Errorf("failed to reset checkpoint %s: %w", pairKey, err)
	}
	return nil
}

// MemoryCheckpoints keeps checkpoints in process memory. Progress is lost on exit.
type MemoryCheckpoints struct {
	mu          sync.Mutex
	checkpoints map[string]Checkpoint
}

// NewMemoryCheckpoints creates an empty in-memory checkpoint store.
func NewMemoryCheckpoints() *MemoryCheckpoints {
	return &MemoryCheckpoints{checkpoints: make(map[string]Checkpoint)}
}

// Load implements Checkpoints.
func (m *MemoryCheckpoints) Load(_ context.Context, pairKey string) (*Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.checkpoints[pairKey]
	if !ok {
		return nil, nil
	}
	return &cp, nil
}

// Save implements Checkpoints.
func (m *MemoryCheckpoints) Save(_ context.Context, pairKey string, state diff.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint %s: %w", pairKey, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	cp := m.checkpoints[pairKey]
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.PairKey = pairKey
	cp.State = string(raw)
	cp.Rounds = state.Round
	cp.Done = state.Done()
	cp.Failed = false
	cp.LastError = ""
	cp.UpdatedAt = now
	m.checkpoints[pairKey] = cp
	return nil
}

// RecordError implements Checkpoints.
func (m *MemoryCheckpoints) RecordError(_ context.Context, pairKey string, roundErr error, fatal bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	cp := m.checkpoints[pairKey]
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.PairKey = pairKey
	cp.Failed = fatal
	cp.LastError = roundErr.Error()
	cp.UpdatedAt = now
	m.checkpoints[pairKey] = cp
	return nil
}

// Reset implements Checkpoints.
func (m *MemoryCheckpoints) Reset(_ context.Context, pairKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checkpoints, pairKey)
	return nil
}
