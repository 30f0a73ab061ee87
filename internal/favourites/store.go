package favourites

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/giannis84/character-favourites/internal/database"
	"github.com/giannis84/character-favourites/internal/logging"
)

// DefaultStorageKey is the blob key the index is persisted under.
const DefaultStorageKey = "rickmorty_favorites"

const defaultWriteTimeout = 5 * time.Second

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Key          string
	Logger       *slog.Logger
	WriteTimeout time.Duration
}

// Store owns the favourites index and mirrors it to a BlobRepository after
// every mutation. Storage failures never reach callers: a failed load starts
// from an empty index and a failed write leaves the in-memory index as the
// source of truth until a later write succeeds.
type Store struct {
	mu           sync.RWMutex
	index        Index
	repo         database.BlobRepository
	key          string
	logger       *slog.Logger
	writeTimeout time.Duration
}

// Load builds a Store from whatever repo holds under the configured key.
func Load(ctx context.Context, repo database.BlobRepository, opts Options) *Store {
	s := &Store{
		index:        Index{},
		repo:         repo,
		key:          opts.Key,
		logger:       opts.Logger,
		writeTimeout: opts.WriteTimeout,
	}
	if s.key == "" {
		s.key = DefaultStorageKey
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = defaultWriteTimeout
	}

	data, err := repo.GetBlob(ctx, s.key)
	switch {
	case errors.Is(err, database.ErrNotFound):
		logging.With(s.logger).Layer("store").Key(s.key).Info("no persisted favourites, starting empty")
		return s
	case err != nil:
		logging.With(s.logger).Layer("store").Key(s.key).Err(err).
			Warn("failed to read persisted favourites, starting empty")
		return s
	}

	idx, err := UnmarshalIndex(data)
	if err != nil {
		logging.With(s.logger).Layer("store").Key(s.key).Err(err).
			Warn("persisted favourites are corrupt, starting empty")
		return s
	}
	s.index = idx

	logging.With(s.logger).Layer("store").Key(s.key).Int("users", len(idx)).
		Info("favourites loaded")
	return s
}

// Toggle adds itemID to user's favourites when absent and removes it when
// present. It returns the new membership.
func (s *Store) Toggle(ctx context.Context, user string, itemID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, added := toggle(s.index[user], itemID)
	s.set(user, ids)
	s.persist(ctx)
	return added
}

// ToggleBulk applies Toggle to each id in order and persists once. An id
// listed twice is toggled twice, so the pair cancels out. It returns the
// user's resulting favourites count.
func (s *Store) ToggleBulk(ctx context.Context, user string, itemIDs []int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.index[user]
	for _, id := range itemIDs {
		ids, _ = toggle(ids, id)
	}
	s.set(user, ids)
	s.persist(ctx)
	return len(s.index[user])
}

// ClearUser drops every favourite of user.
func (s *Store) ClearUser(ctx context.Context, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.index, user)
	s.persist(ctx)
}

// IsFavourite reports whether user marked itemID.
func (s *Store) IsFavourite(user string, itemID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Contains(s.index[user], itemID)
}

// CountFor returns how many favourites user has.
func (s *Store) CountFor(user string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.index[user])
}

// UserFavourites returns a copy of user's ids in insertion order. Unknown
// users get an empty, non-nil slice.
func (s *Store) UserFavourites(user string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.index[user]
	if ids == nil {
		return []int{}
	}
	return slices.Clone(ids)
}

// Users returns the users holding at least one favourite, sorted.
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.index))
	for user := range s.index {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// Snapshot returns a deep copy of the whole index.
func (s *Store) Snapshot() Index {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.index.Clone()
}

// Key returns the blob key the store persists under.
func (s *Store) Key() string {
	return s.key
}

// set stores ids for user, pruning the user when the list is empty.
// Callers must hold the write lock.
func (s *Store) set(user string, ids []int) {
	if len(ids) == 0 {
		delete(s.index, user)
		return
	}
	s.index[user] = ids
}

// persist writes the full index. Errors are logged and dropped. The write is
// detached from ctx cancellation so an aborted request cannot leave storage
// behind the in-memory index. Callers must hold the write lock.
func (s *Store) persist(ctx context.Context) {
	log := logging.FromContext(ctx)
	if log == slog.Default() {
		log = s.logger
	}

	data, err := MarshalIndex(s.index)
	if err != nil {
		logging.With(log).Layer("store").Op("persist").Key(s.key).Err(err).
			Warn("failed to encode favourites")
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	if err := s.repo.PutBlob(writeCtx, s.key, data); err != nil {
		logging.With(log).Layer("store").Op("persist").Key(s.key).Err(err).
			Warn("failed to persist favourites, keeping in-memory state")
		return
	}
	logging.With(log).Layer("store").Op("persist").Key(s.key).Int("bytes", len(data)).
		Debug("favourites persisted")
}
