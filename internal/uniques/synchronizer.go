package uniques

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/structdb/internal/schema"
)

// Store is the unique-record storage the Synchronizer reconciles.
// Implementations run inside the caller's transaction.
type Store interface {
	// ForEachUniqueMemberPath streams the distinct member paths stored in
	// the structure set's unique table.
	ForEachUniqueMemberPath(ctx context.Context, s *schema.StructureSchema, fn func(path string) error) error
	// DeleteUniquesByMemberPaths deletes every record whose member path is
	// in paths and returns the number of rows removed.
	DeleteUniquesByMemberPaths(ctx context.Context, s *schema.StructureSchema, paths []string) (int64, error)
}

// SyncResult reports what a synchronization removed.
type SyncResult struct {
	DroppedPaths []string
	DeletedRows  int64
}

// Synchronizer removes unique records whose member path is no longer an
// index path of the current schema.
//
// It does not lock: concurrent inserts and synchronization against the same
// structure set must be serialized by the caller's transaction.
type Synchronizer struct {
	store  Store
	logger *slog.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// NewSynchronizer creates a Synchronizer over store.
func NewSynchronizer(store Store, opts ...Option) *Synchronizer {
	s := &Synchronizer{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synchronize deletes the records of every stored member path that is not
// among s's index paths. Repeating the call with the same schema deletes
// nothing.
func (sy *Synchronizer) Synchronize(ctx context.Context, s *schema.StructureSchema) (SyncResult, error) {
	current := make(map[string]struct{})
	for _, p := range s.IndexPaths() {
		current[p] = struct{}{}
	}

	var toDrop []string
	err := sy.store.ForEachUniqueMemberPath(ctx, s, func(path string) error {
		if _, ok := current[path]; !ok {
			toDrop = append(toDrop, path)
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, fmt.Errorf("synchronize uniques %s: read paths: %w", s.Name(), err)
	}

	if len(toDrop) == 0 {
		return SyncResult{}, nil
	}
	slices.Sort(toDrop)
	toDrop = slices.Compact(toDrop)

	deleted, err := sy.store.DeleteUniquesByMemberPaths(ctx, s, toDrop)
	if err != nil {
		return SyncResult{}, fmt.Errorf("synchronize uniques %s: delete: %w", s.Name(), err)
	}

	sy.logger.Info("unique member paths dropped",
		"structure_set", s.Name(),
		"paths", toDrop,
		"rows", deleted,
	)

	return SyncResult{DroppedPaths: toDrop, DeletedRows: deleted}, nil
}
