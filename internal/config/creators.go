package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ytget/bili-audio/internal/model"
)

// KeyCreators is the preference key holding the JSON creator list.
const KeyCreators = "ups"

// KV is the slice of fyne.Preferences the store needs.
type KV interface {
	String(key string) string
	SetString(key, value string)
}

// flusher is implemented by KVs that persist explicitly.
type flusher interface {
	Flush() error
}

// CreatorStore keeps the ordered list of followed creators in preferences.
// Records are unique by mid.
type CreatorStore struct {
	prefs KV
	mu    sync.Mutex
}

// NewCreatorStore creates a store over prefs
func NewCreatorStore(prefs KV) *CreatorStore {
	return &CreatorStore{prefs: prefs}
}

// List returns all creators in insertion order.
func (s *CreatorStore) List() ([]model.Creator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the creator with the given mid.
func (s *CreatorStore) Get(mid string) (model.Creator, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creators, err := s.load()
	if err != nil {
		return model.Creator{}, false, err
	}
	if i := indexOf(creators, mid); i >= 0 {
		return creators[i], true, nil
	}
	return model.Creator{}, false, nil
}

// Add appends c, or merges it into the existing record with the same mid.
// A merge keeps the record's position and last sync time and only replaces
// non-empty name and avatar. It reports whether a new record was created.
func (s *CreatorStore) Add(c model.Creator) (bool, error) {
	c.Mid = strings.TrimSpace(c.Mid)
	if _, err := strconv.ParseInt(c.Mid, 10, 64); err != nil {
		return false, fmt.Errorf("invalid mid %q", c.Mid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creators, err := s.load()
	if err != nil {
		return false, err
	}

	if i := indexOf(creators, c.Mid); i >= 0 {
		if c.Name != "" {
			creators[i].Name = c.Name
		}
		if c.Avatar != "" {
			creators[i].Avatar = c.Avatar
		}
		return false, s.save(creators)
	}

	return true, s.save(append(creators, c))
}

// Remove deletes the creator with the given mid. Removing an unknown mid is a no-op.
func (s *CreatorStore) Remove(mid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creators, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(creators, mid)
	if i < 0 {
		return nil
	}
	return s.save(append(creators[:i], creators[i+1:]...))
}

// MarkSynced stamps the creator's last sync time.
func (s *CreatorStore) MarkSynced(mid string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creators, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(creators, mid)
	if i < 0 {
		return fmt.Errorf("creator %s not found", mid)
	}
	creators[i].LastSyncTime = at.UTC().Format(time.RFC3339)
	return s.save(creators)
}

func (s *CreatorStore) load() ([]model.Creator, error) {
	raw := s.prefs.String(KeyCreators)
	if raw == "" {
		return []model.Creator{}, nil
	}
	var creators []model.Creator
	if err := json.Unmarshal([]byte(raw), &creators); err != nil {
		return nil, fmt.Errorf("decode creators: %w", err)
	}
	return creators, nil
}

func (s *CreatorStore) save(creators []model.Creator) error {
	data, err := json.Marshal(creators)
	if err != nil {
		return fmt.Errorf("encode creators: %w", err)
	}
	s.prefs.SetString(KeyCreators, string(data))
	if f, ok := s.prefs.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func indexOf(creators []model.Creator, mid string) int {
	for i, c := range creators {
		if c.Mid == mid {
			return i
		}
	}
	return -1
}
