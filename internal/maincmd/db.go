package maincmd

import "github.com/mna/pyflyby/lang/importdb"

// loadDB returns the known-imports database at path, or the small built-in
// default database when path is empty.
func loadDB(path string) (*importdb.DB, error) {
	if path == "" {
		return importdb.DefaultDB(), nil
	}
	return importdb.LoadFile(path)
}
