package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Snapshot is the serializable form of a store's weights.
type Snapshot struct {
	Kind            Kind              `json:"kind"`
	Order           int               `json:"order"`
	NumStates       int               `json:"num_states"`
	NumSymbols      int               `json:"num_symbols"`
	Version         uint64            `json:"version"`
	Initial         []float64         `json:"initial"`
	Transitions     []float64         `json:"transitions"`
	Trigrams        []float64         `json:"trigrams,omitempty"`
	Emissions       []float64         `json:"emissions,omitempty"`
	SparseEmissions []map[int]float64 `json:"sparse_emissions,omitempty"`
	Kernel          *Kernel           `json:"kernel,omitempty"`
	Support         []SupportSnapshot `json:"support,omitempty"`
}

// SupportSnapshot is one support token of a dual store.
type SupportSnapshot struct {
	Sequence     int       `json:"sequence"`
	Position     int       `json:"position"`
	Token        Token     `json:"token"`
	Coefficients []float64 `json:"coefficients"`
}

// Restore rebuilds a store from a snapshot. The restored weights are plain
// assignments, so the store can be trained further.
func Restore(s *Snapshot) (Store, error) {
	if s == nil {
		return nil, fmt.Errorf("model: nil snapshot")
	}
	cfg := Config{Kind: s.Kind, Order: s.Order, NumStates: s.NumStates, NumSymbols: s.NumSymbols}
	if s.Kernel != nil {
		cfg.Kernel = *s.Kernel
	}
	store, err := New(cfg)
	if err != nil {
		return nil, err
	}

	switch st := store.(type) {
	case *DenseStore:
		st.restoreChain(s)
		for i, w := range s.Emissions {
			if i < st.numSymbols*st.numStates {
				st.assign(st.emitOff+i, w)
			}
		}
	case *SparseStore:
		st.restoreChain(s)
		for state, m := range s.SparseEmissions {
			if state >= st.numStates {
				break
			}
			for sym, w := range m {
				if err := st.SetEmission(state, sym, w); err != nil {
					return nil, fmt.Errorf("model: restore emission (%d, %d): %w", state, sym, err)
				}
			}
		}
	case *DualStore:
		st.restoreChain(s)
		for _, sv := range s.Support {
			if len(sv.Coefficients) != st.numStates {
				return nil, fmt.Errorf("model: support token (%d, %d) has %d coefficients, want %d",
					sv.Sequence, sv.Position, len(sv.Coefficients), st.numStates)
			}
			key := tokenKey{seq: sv.Sequence, pos: sv.Position}
			tok := sv.Token.Clone()
			tok.Sort()
			off := st.alloc(st.numStates)
			for i, w := range sv.Coefficients {
				st.assign(off+i, w)
			}
			st.index[key] = len(st.support)
			st.support = append(st.support, supportToken{key: key, token: tok, offset: off})
		}
	}
	return store, nil
}

// SaveSnapshot writes the store's snapshot to path as JSON.
func SaveSnapshot(store Store, path string) error {
	data, err := json.Marshal(store.Snapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSnapshot reads a store from a JSON snapshot file.
func LoadSnapshot(path string) (Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return Restore(&s)
}
