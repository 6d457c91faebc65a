// Package taskstore persists derived remediation tasks in NATS KV so a
// tracking surface can pick them up between validation runs.
package taskstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/crossref/report"
)

// Bucket names.
const (
	// BucketTasks holds one record per task, keyed by sanitized task ID.
	BucketTasks = "CROSSREF_TASKS"
)

// Status tracks a stored task through remediation.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// ParseStatus validates a remediation status supplied on the command line.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusResolved:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q (want %s, %s, or %s)",
		s, StatusOpen, StatusInProgress, StatusResolved)
}

// Record is a stored task. The embedded task ID is stable across runs, so a
// re-run updates the existing record instead of duplicating it.
type Record struct {
	report.Task

	// RunID identifies the validation run that last produced this task.
	RunID string `json:"run_id"`

	// Status is the remediation state.
	Status Status `json:"status"`

	// CreatedAt is when the task was first stored.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last touched by a run or a status
	// change.
	UpdatedAt time.Time `json:"updated_at"`
}

// kv is the subset of jetstream.KeyValue the store uses.
type kv interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
}

// Store provides task persistence backed by NATS KV.
type Store struct {
	tasks kv
}

// NewStore creates a Store with the given JetStream context, creating the
// tasks bucket if it doesn't exist.
func NewStore(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	tasks, err := getOrCreateBucket(ctx, js, BucketTasks)
	if err != nil {
		return nil, fmt.Errorf("create tasks bucket: %w", err)
	}
	return &Store{tasks: tasks}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "crossref task storage",
		History:     5, // Keep last 5 revisions
	})
}

// SaveRun stores every task from a run. Existing records keep their creation
// time and remediation status; new records start open.
func (s *Store) SaveRun(ctx context.Context, runID string, tasks []report.Task) error {
	now := time.Now()

	for _, t := range tasks {
		rec := Record{
			Task:      t,
			RunID:     runID,
			Status:    StatusOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if prev, err := s.Get(ctx, t.ID); err == nil {
			rec.Status = prev.Status
			rec.CreatedAt = prev.CreatedAt
		} else if err != ErrNotFound {
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal task %s: %w", t.ID, err)
		}
		if _, err := s.tasks.Put(ctx, Key(t.ID), data); err != nil {
			return fmt.Errorf("store task %s: %w", t.ID, err)
		}
	}

	return nil
}

// Get retrieves a stored task by task ID.
func (s *Store) Get(ctx context.Context, taskID string) (*Record, error) {
	entry, err := s.tasks.Get(ctx, Key(taskID))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(entry.Value(), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal task: %w", err)
	}
	return &rec, nil
}

// List returns all stored tasks ordered by task ID.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	keys, err := s.tasks.Keys(ctx)
	if err != nil {
		if err == jetstream.ErrNoKeysFound {
			return nil, nil
		}
		return nil, fmt.Errorf("list task keys: %w", err)
	}
	sort.Strings(keys)

	records := make([]*Record, 0, len(keys))
	for _, key := range keys {
		entry, err := s.tasks.Get(ctx, key)
		if err != nil {
			continue // Skip entries that fail to load
		}
		var rec Record
		if err := json.Unmarshal(entry.Value(), &rec); err != nil {
			continue
		}
		records = append(records, &rec)
	}

	return records, nil
}

// UpdateStatus transitions a stored task's remediation status.
func (s *Store) UpdateStatus(ctx context.Context, taskID string, status Status) error {
	rec, err := s.Get(ctx, taskID)
	if err != nil {
		return err
	}

	rec.Status = status
	rec.UpdatedAt = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", taskID, err)
	}
	if _, err := s.tasks.Put(ctx, Key(taskID), data); err != nil {
		return fmt.Errorf("update task %s: %w", taskID, err)
	}
	return nil
}

// Key maps a task ID to a KV key. Task IDs use dots as separators
// ("task.broken-link.ch01"), which NATS KV treats as key hierarchy; that is
// exactly the layout we want, so only unsupported characters are replaced.
func Key(taskID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, taskID)
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
