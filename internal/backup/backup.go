package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/docstore"
)

// Store is the path-addressed document store a backup is replayed into.
type Store interface {
	Put(ctx context.Context, collPath, id string, fields map[string]any) error
	Documents(ctx context.Context, collPath string) ([]docstore.Document, error)
	Collections(ctx context.Context) ([]string, error)
	SubCollections(ctx context.Context, docPath string) ([]string, error)
}

type RestoreOptions struct {
	DryRun bool
	// Only restricts the restore to these top-level collections.
	Only []string
}

// Stats counts restored documents per collection path.
type Stats struct {
	Counts       map[string]int
	GeneratedIDs int
}

func (s Stats) Total() int {
	return lo.Sum(lo.Values(s.Counts))
}

// Paths returns the collection paths in lexical order.
func (s Stats) Paths() []string {
	paths := lo.Keys(s.Counts)
	sort.Strings(paths)
	return paths
}

type Service struct {
	store  Store
	logger *log.Logger
	newID  func() string
	now    func() time.Time
}

func NewService(store Store, logger *log.Logger) *Service {
	return &Service{store: store, logger: logger, newID: uuid.NewString, now: time.Now}
}

// Restore upserts every document of f. Re-running it over the same file is idempotent.
func (s *Service) Restore(ctx context.Context, f *File, opts RestoreOptions) (Stats, error) {
	stats := Stats{Counts: map[string]int{}}

	names := lo.Keys(f.Collections)
	sort.Strings(names)
	for _, name := range names {
		if len(opts.Only) > 0 && !lo.Contains(opts.Only, name) {
			s.logger.WithField("collection", name).Debug("skipping collection")
			continue
		}
		if err := s.restoreCollection(ctx, name, f.Collections[name], opts, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (s *Service) restoreCollection(ctx context.Context, collPath string, docs []map[string]any, opts RestoreOptions, stats *Stats) error {
	coll, err := docstore.ParseCollectionPath(collPath)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		id := documentID(doc["id"])
		if id == "" {
			id = s.newID()
			stats.GeneratedIDs++
			s.logger.WithFields(log.Fields{"collection": collPath, "id": id}).Warn("document has no id, generated one")
		}
		docPath := coll.DocPath(id)

		body := make(map[string]any, len(doc))
		subs := map[string][]map[string]any{}
		for k, v := range doc {
			if k == "id" {
				continue
			}
			if name, ok := SubcollectionName(k); ok {
				children, err := asDocuments(v)
				if err != nil {
					return fmt.Errorf("%s: %s: %w", docPath, k, err)
				}
				subs[name] = children
				continue
			}
			body[k] = v
		}

		if !opts.DryRun {
			if err := s.store.Put(ctx, collPath, id, body); err != nil {
				return err
			}
		}
		stats.Counts[collPath]++

		for _, name := range lo.Keys(subs) {
			if err := s.restoreCollection(ctx, docPath+"/"+name, subs[name], opts, stats); err != nil {
				return err
			}
		}
	}
	return nil
}

func documentID(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func asDocuments(v any) ([]map[string]any, error) {
	switch x := v.(type) {
	case []map[string]any:
		return x, nil
	case []any:
		docs := make([]map[string]any, 0, len(x))
		for i, e := range x {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is not a document", i)
			}
			docs = append(docs, m)
		}
		return docs, nil
	default:
		return nil, fmt.Errorf("expected an array of documents, got %T", v)
	}
}

// Export reads the given top-level collections (all of them when empty) with
// their nested sub-collections into a backup file.
func (s *Service) Export(ctx context.Context, collections []string) (*File, error) {
	if len(collections) == 0 {
		var err error
		if collections, err = s.store.Collections(ctx); err != nil {
			return nil, err
		}
	}

	f := &File{
		Timestamp:   s.now().UTC().Format(docstore.TimeLayout),
		Collections: make(map[string][]map[string]any, len(collections)),
	}
	for _, name := range collections {
		docs, err := s.exportCollection(ctx, name)
		if err != nil {
			return nil, err
		}
		f.Collections[name] = docs
	}
	return f, nil
}

func (s *Service) exportCollection(ctx context.Context, collPath string) ([]map[string]any, error) {
	docs, err := s.store.Documents(ctx, collPath)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		m := make(map[string]any, len(doc.Fields)+1)
		for k, v := range doc.Fields {
			m[k] = v
		}
		m["id"] = doc.ID

		docPath := collPath + "/" + doc.ID
		subs, err := s.store.SubCollections(ctx, docPath)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			children, err := s.exportCollection(ctx, docPath+"/"+sub)
			if err != nil {
				return nil, err
			}
			m[SubcollectionPrefix+sub] = children
		}
		out = append(out, m)
	}
	return out, nil
}
