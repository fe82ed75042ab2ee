// Package backup reads, writes, restores and exports JSON backups of the
// document tree. Nested collections are carried inside their parent document
// under keys named "_subcollection_<name>".
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const SubcollectionPrefix = "_subcollection_"

var ErrNoCollections = errors.New("backup has no collections")

// File is the on-disk backup format.
type File struct {
	Timestamp   string                      `json:"timestamp"`
	Collections map[string][]map[string]any `json:"collections"`
}

// Read decodes a backup, keeping numbers as json.Number so integers stay integers.
func Read(r io.Reader) (*File, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	if f.Collections == nil {
		return nil, ErrNoCollections
	}
	return &f, nil
}

func Write(w io.Writer, f *File) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// SubcollectionName returns X for a "_subcollection_X" key.
func SubcollectionName(key string) (string, bool) {
	name, ok := strings.CutPrefix(key, SubcollectionPrefix)
	return name, ok && name != ""
}
