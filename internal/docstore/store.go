package docstore

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Document is one stored document with the path bookkeeping fields removed.
type Document struct {
	ID     string
	Fields map[string]any
}

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Put upserts document id into the collection at collPath, replacing its fields.
func (s *Store) Put(ctx context.Context, collPath, id string, fields map[string]any) error {
	p, err := ParseCollectionPath(collPath)
	if err != nil {
		return err
	}

	doc := bson.M{}
	for k, v := range fields {
		doc[k] = ToStore(v)
	}
	key := p.Key(id)
	doc[IDField] = key
	if p.Parent != "" {
		doc[ParentField] = p.Parent
		doc[DocIDField] = id
	}

	_, err = s.db.Collection(p.Name).ReplaceOne(ctx,
		bson.M{IDField: key},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", p.DocPath(id), err)
	}
	return nil
}

// Documents returns every document of the collection at collPath, ordered by id.
func (s *Store) Documents(ctx context.Context, collPath string) ([]Document, error) {
	p, err := ParseCollectionPath(collPath)
	if err != nil {
		return nil, err
	}

	filter := bson.M{ParentField: bson.M{"$exists": false}}
	if p.Parent != "" {
		filter = bson.M{ParentField: p.Parent}
	}

	cursor, err := s.db.Collection(p.Name).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collPath, err)
	}
	defer cursor.Close(ctx)

	docs := []Document{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collPath, err)
		}
		docs = append(docs, toDocument(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collPath, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func toDocument(raw bson.M) Document {
	id := fmt.Sprint(FromStore(raw[IDField]))
	if docID, ok := raw[DocIDField].(string); ok {
		id = docID
	}

	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case IDField, ParentField, DocIDField:
			continue
		}
		fields[k] = FromStore(v)
	}
	return Document{ID: id, Fields: fields}
}

// Collections lists the collections holding at least one top-level document.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	return s.collectionsWith(ctx, bson.M{ParentField: bson.M{"$exists": false}})
}

// SubCollections lists the sub-collection names that have documents under docPath.
func (s *Store) SubCollections(ctx context.Context, docPath string) ([]string, error) {
	return s.collectionsWith(ctx, bson.M{ParentField: docPath})
}

func (s *Store) collectionsWith(ctx context.Context, filter bson.M) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		n, err := s.db.Collection(name).CountDocuments(ctx, filter, options.Count().SetLimit(1))
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		if n > 0 {
			out = append(out, name)
		}
	}
	return out, nil
}
