package domain

import "errors"

var (
	ErrDuplicateTrack = errors.New("domain: duplicate track")
	ErrPoolFull       = errors.New("domain: candidate pool full")
)

// CandidatePool accumulates candidate tracks for one seed while preventing
// duplicates. The seed's id and recording key are registered up front so the
// seed can never be recommended back. A CandidatePool has a single owner and
// is not safe for concurrent use.
type CandidatePool struct {
	Tracks []Track

	seen map[string]struct{}
	keys map[string]struct{}
}

// NewCandidatePool returns an empty pool that already excludes seed.
func NewCandidatePool(seed Track) *CandidatePool {
	p := &CandidatePool{
		Tracks: []Track{},
		seen:   map[string]struct{}{seed.ID: {}},
		keys:   map[string]struct{}{},
	}
	if k := seed.Key(); k != "" {
		p.keys[k] = struct{}{}
	}
	return p
}

// Len returns the number of accepted candidates.
func (p *CandidatePool) Len() int {
	return len(p.Tracks)
}

// Seen reports whether id has been registered.
func (p *CandidatePool) Seen(id string) bool {
	_, ok := p.seen[id]
	return ok
}

// AddTrack appends t unless the pool already holds limit tracks, or t's id or
// recording key was seen before. limit <= 0 means unbounded.
func (p *CandidatePool) AddTrack(t Track, limit int) error {
	if limit > 0 && len(p.Tracks) >= limit {
		return ErrPoolFull
	}
	if t.ID == "" || p.Seen(t.ID) {
		return ErrDuplicateTrack
	}
	k := t.Key()
	if k != "" {
		if _, dup := p.keys[k]; dup {
			return ErrDuplicateTrack
		}
		p.keys[k] = struct{}{}
	}
	p.seen[t.ID] = struct{}{}
	p.Tracks = append(p.Tracks, t)
	return nil
}
