package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store reads and updates the per-document-type rule files in a directory.
// Reads are served from a cache that is dropped on every write and on
// filesystem change notifications (see Watch). Updates are serialized.
type Store struct {
	dir string
	log *slog.Logger

	mu    sync.RWMutex
	cache map[DocType][]byte
}

// NewStore creates a Store over dir, where files are named <doc_type>_rules.json.
func NewStore(dir string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		dir:   dir,
		log:   log.With("component", "rules"),
		cache: make(map[DocType][]byte),
	}
}

// Dir returns the rules directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the rule file path of dt.
func (s *Store) Path(dt DocType) string {
	return filepath.Join(s.dir, string(dt)+"_rules.json")
}

// Load returns the typed rule set of dt.
func (s *Store) Load(dt DocType) (*RuleSet, error) {
	data, err := s.read(dt)
	if err != nil {
		return nil, err
	}
	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, &OperationError{Op: "load", DocType: dt, Err: fmt.Errorf("decode rules: %w", err)}
	}
	return &rs, nil
}

// Raw returns the full JSON tree of dt, including keys outside the typed schema.
func (s *Store) Raw(dt DocType) (map[string]any, error) {
	data, err := s.read(dt)
	if err != nil {
		return nil, err
	}
	tree := map[string]any{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, &OperationError{Op: "load", DocType: dt, Err: fmt.Errorf("decode rules: %w", err)}
	}
	return tree, nil
}

// Update sets the dotted rule key of dt to raw, converted to the key's
// declared kind, and persists the file.
func (s *Store) Update(dt DocType, key, raw string) (Value, error) {
	opErr := func(err error) error {
		return &OperationError{Op: "update", DocType: dt, Key: key, Err: err}
	}

	kind, wildcard, ok := KindOf(key)
	if !ok {
		return Value{}, opErr(ErrUnknownRule)
	}
	val, err := Coerce(kind, raw)
	if err != nil {
		return Value{}, opErr(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.readLocked(dt)
	if err != nil {
		return Value{}, err
	}
	tree := map[string]any{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return Value{}, opErr(fmt.Errorf("decode rules: %w", err))
	}
	if err := setPath(tree, strings.Split(key, "."), val.Any(), wildcard); err != nil {
		return Value{}, opErr(err)
	}

	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return Value{}, opErr(fmt.Errorf("encode rules: %w", err))
	}
	var check RuleSet
	if err := json.Unmarshal(out, &check); err != nil {
		return Value{}, opErr(fmt.Errorf("updated rules no longer match schema: %w", err))
	}
	if err := writeFileAtomic(s.Path(dt), out); err != nil {
		return Value{}, opErr(fmt.Errorf("save rules: %w", err))
	}
	delete(s.cache, dt)

	s.log.Info("rule updated", "doc_type", dt, "key", key, "value", val.String())
	return val, nil
}

// UpdateAll applies Update to every document type. It returns the types that
// were updated and the failures of the others.
func (s *Store) UpdateAll(key, raw string) ([]DocType, map[DocType]error) {
	var updated []DocType
	failures := make(map[DocType]error)
	for _, dt := range docTypes {
		if _, err := s.Update(dt, key, raw); err != nil {
			failures[dt] = err
			continue
		}
		updated = append(updated, dt)
	}
	return updated, failures
}

// Invalidate drops cached file contents; with no arguments the whole cache.
func (s *Store) Invalidate(dts ...DocType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(dts) == 0 {
		s.cache = make(map[DocType][]byte)
		return
	}
	for _, dt := range dts {
		delete(s.cache, dt)
	}
}

func (s *Store) read(dt DocType) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.cache[dt]
	s.mu.RUnlock()
	if ok {
		return data, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(dt)
}

func (s *Store) readLocked(dt DocType) ([]byte, error) {
	if data, ok := s.cache[dt]; ok {
		return data, nil
	}
	data, err := os.ReadFile(s.Path(dt))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: no rule file for %s", ErrUnknownDocType, dt)
		}
		return nil, &OperationError{Op: "load", DocType: dt, Err: err}
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	s.cache[dt] = data
	return data, nil
}

// setPath assigns value at keys inside tree. Intermediate sections must
// exist; the final key must exist unless allowNew is set.
func setPath(tree map[string]any, keys []string, value any, allowNew bool) error {
	current := tree
	for _, k := range keys[:len(keys)-1] {
		next, ok := current[k].(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s", ErrSectionNotFound, k)
		}
		current = next
	}
	last := keys[len(keys)-1]
	if _, ok := current[last]; !ok && !allowNew {
		return fmt.Errorf("%w: %s", ErrUnknownRule, last)
	}
	current[last] = value
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rules-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
