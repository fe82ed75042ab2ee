// Package docstore maps a collection/document path hierarchy onto Mongo.
//
// Top-level documents live in the collection of the same name with _id set to
// the document id. Documents of a sub-collection such as users/u1/cars live in
// the "cars" collection, carry _parent ("users/u1") and _docId ("c1"), and use
// the full document path ("users/u1/cars/c1") as _id.
package docstore

import (
	"errors"
	"fmt"
	"strings"
)

const (
	IDField     = "_id"
	ParentField = "_parent"
	DocIDField  = "_docId"
)

var ErrInvalidPath = errors.New("invalid collection path")

// CollectionPath is a parsed path with an odd number of segments.
type CollectionPath struct {
	Parent string
	Name   string
}

func ParseCollectionPath(path string) (CollectionPath, error) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs)%2 == 0 {
		return CollectionPath{}, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, s := range segs {
		if s == "" {
			return CollectionPath{}, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}

	last := len(segs) - 1
	return CollectionPath{
		Parent: strings.Join(segs[:last], "/"),
		Name:   segs[last],
	}, nil
}

func (p CollectionPath) String() string {
	if p.Parent == "" {
		return p.Name
	}
	return p.Parent + "/" + p.Name
}

// DocPath is the path of document id inside this collection.
func (p CollectionPath) DocPath(id string) string {
	return p.String() + "/" + id
}

// Key is the Mongo _id used for document id.
func (p CollectionPath) Key(id string) string {
	if p.Parent == "" {
		return id
	}
	return p.DocPath(id)
}
