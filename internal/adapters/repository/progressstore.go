package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/okian/formcheck/internal/domain/types"
)

// MemoryProgressStore is an in-memory ProgressStore.
type MemoryProgressStore struct {
	mu       sync.RWMutex
	athletes map[string]map[string]*types.ProgressEntry
}

// NewMemoryProgressStore creates an empty progress store.
func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{
		athletes: make(map[string]map[string]*types.ProgressEntry),
	}
}

// Record implements ProgressStore.
func (s *MemoryProgressStore) Record(_ context.Context, a Attempt) (Outcome, error) {
	if strings.TrimSpace(a.AthleteID) == "" || strings.TrimSpace(a.SkillID) == "" {
		return Outcome{}, fmt.Errorf("%w: athlete and skill are required", ErrInvalidAttempt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	skills, ok := s.athletes[a.AthleteID]
	if !ok {
		skills = make(map[string]*types.ProgressEntry)
		s.athletes[a.AthleteID] = skills
	}

	entry := entryFor(skills, a.SkillID)
	var out Outcome
	if entry.Attempts == 0 || a.Score > entry.BestScore {
		out.Improved = true
		entry.BestScore = a.Score
	}
	entry.Attempts++
	entry.Unlocked = true
	if a.At.After(entry.LastAnalyzedAt) {
		entry.LastAnalyzedAt = a.At
	}

	if a.Passing {
		entry.Passed = true
		if a.Next != "" {
			next := entryFor(skills, a.Next)
			if !next.Unlocked {
				next.Unlocked = true
				out.Unlocked = a.Next
			}
		}
	}
	return out, nil
}

// Progress implements ProgressStore.
func (s *MemoryProgressStore) Progress(_ context.Context, athleteID string) ([]types.ProgressEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skills, ok := s.athletes[athleteID]
	if !ok {
		return nil, fmt.Errorf("athlete %s: %w", athleteID, ErrNotFound)
	}
	out := make([]types.ProgressEntry, 0, len(skills))
	for _, e := range skills {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillID < out[j].SkillID })
	return out, nil
}

// Count implements ProgressStore.
func (s *MemoryProgressStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.athletes)
}

func entryFor(skills map[string]*types.ProgressEntry, skillID string) *types.ProgressEntry {
	e, ok := skills[skillID]
	if !ok {
		e = &types.ProgressEntry{SkillID: skillID}
		skills[skillID] = e
	}
	return e
}
