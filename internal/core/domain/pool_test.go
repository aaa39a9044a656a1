package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestCandidatePool_AddTrack(t *testing.T) {
	seed := Track{ID: "seed", Name: "Creep", Artists: []Artist{{ID: "a1", Name: "Radiohead"}}}

	tests := []struct {
		name          string
		initialTracks []Track
		toAdd         Track
		limit         int
		wantErr       error
		wantLen       int
	}{
		{
			name:    "adds new track successfully",
			toAdd:   Track{ID: "t1", Name: "Song One", Artists: []Artist{{Name: "Artist A"}}},
			wantErr: nil,
			wantLen: 1,
		},
		{
			name:    "rejects the seed id",
			toAdd:   Track{ID: "seed", Name: "Anything", Artists: []Artist{{Name: "Someone"}}},
			wantErr: ErrDuplicateTrack,
			wantLen: 0,
		},
		{
			name:    "rejects a remaster of the seed",
			toAdd:   Track{ID: "t9", Name: "Creep - Remastered 2009", Artists: []Artist{{Name: "Radiohead"}}},
			wantErr: ErrDuplicateTrack,
			wantLen: 0,
		},
		{
			name: "rejects duplicate id",
			initialTracks: []Track{
				{ID: "t1", Name: "Existing", Artists: []Artist{{Name: "Artist A"}}},
			},
			toAdd:   Track{ID: "t1", Name: "Other Title", Artists: []Artist{{Name: "Artist B"}}},
			wantErr: ErrDuplicateTrack,
			wantLen: 1,
		},
		{
			name: "rejects once the limit is reached",
			initialTracks: []Track{
				{ID: "t1", Name: "One", Artists: []Artist{{Name: "A"}}},
				{ID: "t2", Name: "Two", Artists: []Artist{{Name: "B"}}},
			},
			toAdd:   Track{ID: "t3", Name: "Three", Artists: []Artist{{Name: "C"}}},
			limit:   2,
			wantErr: ErrPoolFull,
			wantLen: 2,
		},
		{
			name:    "rejects an empty id",
			toAdd:   Track{Name: "Nameless"},
			wantErr: ErrDuplicateTrack,
			wantLen: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewCandidatePool(seed)
			for _, tr := range tc.initialTracks {
				if err := p.AddTrack(tr, 0); err != nil {
					t.Fatalf("seeding pool: %v", err)
				}
			}

			err := p.AddTrack(tc.toAdd, tc.limit)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
			} else if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}

			if got := p.Len(); got != tc.wantLen {
				t.Fatalf("expected %d tracks, got %d", tc.wantLen, got)
			}

			if tc.wantErr == nil {
				last := p.Tracks[len(p.Tracks)-1]
				if !reflect.DeepEqual(last, tc.toAdd) {
					t.Fatalf("last track mismatch: want %+v, got %+v", tc.toAdd, last)
				}
				if !p.Seen(tc.toAdd.ID) {
					t.Fatalf("expected %s to be registered", tc.toAdd.ID)
				}
			}
		})
	}
}
