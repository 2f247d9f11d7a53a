package preset

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MemoryStore is a process-local Store used when Redis is disabled.
type MemoryStore struct {
	mu      sync.RWMutex
	presets map[string]Preset
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{presets: make(map[string]Preset)}
}

func (s *MemoryStore) Save(_ context.Context, p *Preset) error {
	if err := validatePreset(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if prev, ok := s.presets[p.Name]; ok {
		p.CreatedAt = prev.CreatedAt
	}
	s.presets[p.Name] = *p
	return nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (*Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presets[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "preset %q", name)
	}
	return &p, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Preset, 0, len(s.presets))
	for _, p := range s.presets {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.presets[name]; !ok {
		return errors.Wrapf(ErrNotFound, "preset %q", name)
	}
	delete(s.presets, name)
	return nil
}
