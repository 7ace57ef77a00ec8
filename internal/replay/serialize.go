// Package replay stores and restores match histories. Serialize writes the
// log entries of a match with every repeated object and array stored once;
// Replay rebuilds a state from its mutation records.
package replay

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/peterkuimelis/gitcg/internal/game"
	"github.com/peterkuimelis/gitcg/internal/log"
)

// serializedEntry is the wire form of one game.LogEntry. S is a reference
// into the store.
type serializedEntry struct {
	S any             `json:"s"`
	E []log.GameEvent `json:"e"`
	R bool            `json:"r"`
}

type serializedLog struct {
	Store []any             `json:"store"`
	Log   []serializedEntry `json:"log"`
}

// interner assigns store indexes. Equal values share one index.
type interner struct {
	store []any
	index map[string]int
}

func ref(idx int) map[string]any {
	return map[string]any{"$": idx}
}

func (in *interner) intern(v any) (any, error) {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			c, err := in.intern(child)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return in.store1(out)
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			c, err := in.intern(child)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		if len(out) < 2 {
			return out, nil
		}
		return in.store1(out)
	default:
		return v, nil
	}
}

func (in *interner) store1(v any) (any, error) {
	// encoding/json sorts map keys, so the encoding is canonical.
	key, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if idx, ok := in.index[string(key)]; ok {
		return ref(idx), nil
	}
	in.store = append(in.store, v)
	idx := len(in.store) - 1
	in.index[string(key)] = idx
	return ref(idx), nil
}

// decodeGeneric turns JSON into maps and slices, keeping numbers exact.
func decodeGeneric(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Serialize encodes log entries. The registry and the mutation log of each
// state are left out; Deserialize takes the registry back.
func Serialize(entries []game.LogEntry) ([]byte, error) {
	in := &interner{index: make(map[string]int)}
	out := serializedLog{Log: make([]serializedEntry, 0, len(entries))}
	for i, e := range entries {
		raw, err := json.Marshal(e.State)
		if err != nil {
			return nil, fmt.Errorf("encode state %d: %w", i, err)
		}
		generic, err := decodeGeneric(raw)
		if err != nil {
			return nil, fmt.Errorf("decode state %d: %w", i, err)
		}
		s, err := in.intern(generic)
		if err != nil {
			return nil, fmt.Errorf("intern state %d: %w", i, err)
		}
		out.Log = append(out.Log, serializedEntry{S: s, E: e.Events, R: e.CanResume})
	}
	out.Store = in.store
	if out.Store == nil {
		out.Store = []any{}
	}
	return json.Marshal(out)
}

// resolver expands store references back into plain values.
type resolver struct {
	store    []any
	restored map[int]any
	active   map[int]bool
}

func (r *resolver) resolve(v any) (any, error) {
	switch v := v.(type) {
	case map[string]any:
		if n, ok := v["$"]; ok && len(v) == 1 {
			return r.lookup(n)
		}
		out := make(map[string]any, len(v))
		for k, child := range v {
			c, err := r.resolve(child)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			c, err := r.resolve(child)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	default:
		return v, nil
	}
}

func (r *resolver) lookup(n any) (any, error) {
	num, ok := n.(json.Number)
	if !ok {
		return nil, fmt.Errorf("reference %v is not a number", n)
	}
	i64, err := num.Int64()
	if err != nil {
		return nil, fmt.Errorf("reference %v: %w", n, err)
	}
	idx := int(i64)
	if idx < 0 || idx >= len(r.store) {
		return nil, fmt.Errorf("reference %d out of range (store has %d)", idx, len(r.store))
	}
	if v, ok := r.restored[idx]; ok {
		return v, nil
	}
	if r.active[idx] {
		return nil, fmt.Errorf("reference %d is cyclic", idx)
	}
	r.active[idx] = true
	v, err := r.resolve(r.store[idx])
	delete(r.active, idx)
	if err != nil {
		return nil, err
	}
	r.restored[idx] = v
	return v, nil
}

// Deserialize decodes the output of Serialize and attaches every state to
// data.
func Deserialize(raw []byte, data *game.Registry) ([]game.LogEntry, error) {
	generic, err := decodeGeneric(raw)
	if err != nil {
		return nil, fmt.Errorf("decode log: %w", err)
	}
	top, ok := generic.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode log: top level is not an object")
	}
	store, _ := top["store"].([]any)
	entries, _ := top["log"].([]any)
	r := &resolver{store: store, restored: make(map[int]any), active: make(map[int]bool)}

	out := make([]game.LogEntry, 0, len(entries))
	for i, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d is not an object", i)
		}
		s, err := r.resolve(m["s"])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entry, err := decodeEntry(s, m)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := entry.State.AttachRegistry(data); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

func decodeEntry(state any, m map[string]any) (game.LogEntry, error) {
	var entry game.LogEntry
	raw, err := json.Marshal(state)
	if err != nil {
		return entry, err
	}
	entry.State = &game.GameState{}
	if err := json.Unmarshal(raw, entry.State); err != nil {
		return entry, fmt.Errorf("decode state: %w", err)
	}
	if events, ok := m["e"]; ok && events != nil {
		raw, err := json.Marshal(events)
		if err != nil {
			return entry, err
		}
		if err := json.Unmarshal(raw, &entry.Events); err != nil {
			return entry, fmt.Errorf("decode events: %w", err)
		}
	}
	entry.CanResume, _ = m["r"].(bool)
	return entry, nil
}
