// Package importdb implements spec.md §3's ImportDB: a flat, caller-
// configurable mapping from a bare identifier to the import statement(s)
// that would bind it. The specification treats it as a thin collaborator
// ("out of scope except for its interface"), so this package does no more
// than load, merge and look the mapping up — a YAML document on disk (or
// any io.Reader), following the same "file format the user maintains by
// hand" spirit as pyflyby's own ~/.pyflyby/*.py known-imports files.
package importdb

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dolthub/swiss"
	"gopkg.in/yaml.v3"
)

// DB is a read-only-per-call mapping from bare identifier to one or more
// executable import statement strings. The zero value is not usable; build
// one with New, Load or DefaultDB.
type DB struct {
	byIdent *swiss.Map[string, []string]
}

// New returns an empty DB.
func New() *DB {
	return &DB{byIdent: swiss.NewMap[string, []string](64)}
}

// Add registers stmt as one of the import statements for ident, preserving
// insertion order across repeated calls for the same ident.
func (db *DB) Add(ident, stmt string) {
	existing, _ := db.byIdent.Get(ident)
	db.byIdent.Put(ident, append(existing, stmt))
}

// Lookup returns the import statements registered for ident, or nil if the
// database has no entry — a miss is silent, not an error, per spec.md §7.
func (db *DB) Lookup(ident string) []string {
	stmts, ok := db.byIdent.Get(ident)
	if !ok {
		return nil
	}
	return stmts
}

// Idents returns every identifier the database has an entry for, sorted.
func (db *DB) Idents() []string {
	names := make([]string, 0, db.byIdent.Count())
	db.byIdent.Iter(func(k string, _ []string) bool {
		names = append(names, k)
		return false
	})
	sort.Strings(names)
	return names
}

// Load parses a YAML known-imports document from r and merges it into a new
// DB. The on-disk shape maps an identifier to either a single import
// statement string or a list of them, e.g.
//
//	b64decode: "from base64 import b64decode"
//	os:
//	  - "import os"
func Load(r io.Reader) (*DB, error) {
	var doc map[string][]string
	raw := map[string]yaml.Node{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return New(), nil
		}
		return nil, fmt.Errorf("importdb: decode: %w", err)
	}

	doc = make(map[string][]string, len(raw))
	for ident, node := range raw {
		switch node.Kind {
		case yaml.ScalarNode:
			var s string
			if err := node.Decode(&s); err != nil {
				return nil, fmt.Errorf("importdb: %s: %w", ident, err)
			}
			doc[ident] = []string{s}
		case yaml.SequenceNode:
			var ss []string
			if err := node.Decode(&ss); err != nil {
				return nil, fmt.Errorf("importdb: %s: %w", ident, err)
			}
			doc[ident] = ss
		default:
			return nil, fmt.Errorf("importdb: %s: unsupported YAML node kind", ident)
		}
	}

	db := New()
	for ident, stmts := range doc {
		for _, stmt := range stmts {
			db.Add(ident, stmt)
		}
	}
	return db, nil
}

// LoadFile opens path and parses it as a known-imports YAML document.
func LoadFile(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// DefaultDB returns a small, hardcoded known-imports mapping covering the
// handful of identifiers lang/modules simulates, enough to drive auto_import
// and auto_eval without a configuration file — matching the target
// runtime's bundled default known-imports database in spirit, not content.
func DefaultDB() *DB {
	db := New()
	entries := map[string][]string{
		"os":        {"import os"},
		"b64decode": {"from base64 import b64decode"},
		"b64encode": {"from base64 import b64encode"},
		"json":      {"import json"},
	}
	for ident, stmts := range entries {
		for _, stmt := range stmts {
			db.Add(ident, stmt)
		}
	}
	return db
}
