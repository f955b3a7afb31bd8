// Package mongocollection contains the MongoDB-backed [domain.Collection]
// implementation. Filters, updates and pipelines are compiled from their
// tagged variants into bson before reaching the driver.
package mongocollection

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mergington/schooldb/domain"
)

// Collection implements [domain.Collection] over a *mongo.Collection.
type Collection struct {
	coll *mongo.Collection
}

// NewCollection wraps a driver collection handle.
func NewCollection(coll *mongo.Collection) *Collection {
	return &Collection{coll: coll}
}

// FindOne implements [domain.Collection].
func (c *Collection) FindOne(ctx context.Context, filter domain.Filter) (domain.Document, bool, error) {
	var raw bson.M
	err := c.coll.FindOne(ctx, CompileFilter(filter)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("finding document: %w", err)
	}
	return fromBSON(raw), true, nil
}

// Find implements [domain.Collection].
func (c *Collection) Find(ctx context.Context, filter domain.Filter) ([]domain.Document, error) {
	cur, err := c.coll.Find(ctx, CompileFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("finding documents: %w", err)
	}
	return drain(ctx, cur)
}

// Count implements [domain.Collection].
func (c *Collection) Count(ctx context.Context, filter domain.Filter) (int64, error) {
	count, err := c.coll.CountDocuments(ctx, CompileFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// Insert implements [domain.Collection]. A replace-with-upsert keeps the
// silent-overwrite semantics the emulation backend provides, instead of the
// duplicate-key error a plain insert would raise.
func (c *Collection) Insert(ctx context.Context, doc domain.Document) error {
	id := doc.ID()
	if id == "" {
		return domain.ErrMissingID
	}
	_, err := c.coll.ReplaceOne(ctx,
		bson.M{domain.IDField: id},
		toBSON(doc),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// UpdateOne implements [domain.Collection]. The matched count is returned so
// both backends report 1 for a located document even when the operation was
// a no-op, such as pulling an absent value.
func (c *Collection) UpdateOne(ctx context.Context, filter domain.Filter, update domain.Update) (int64, error) {
	res, err := c.coll.UpdateOne(ctx, CompileFilter(filter), CompileUpdate(update))
	if err != nil {
		return 0, fmt.Errorf("updating document: %w", err)
	}
	return res.MatchedCount, nil
}

// Aggregate implements [domain.Collection].
func (c *Collection) Aggregate(ctx context.Context, pipeline domain.Pipeline) ([]domain.Document, error) {
	compiled, ok := CompilePipeline(pipeline)
	if !ok {
		return []domain.Document{}, nil
	}
	cur, err := c.coll.Aggregate(ctx, compiled)
	if err != nil {
		return nil, fmt.Errorf("aggregating: %w", err)
	}
	return drain(ctx, cur)
}

func drain(ctx context.Context, cur *mongo.Cursor) ([]domain.Document, error) {
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}
	res := make([]domain.Document, len(raw))
	for n, m := range raw {
		res[n] = fromBSON(m)
	}
	return res, nil
}

// CompileFilter translates tagged filter conditions into a bson document.
func CompileFilter(filter domain.Filter) bson.M {
	res := bson.M{}
	for _, cond := range filter {
		switch c := cond.(type) {
		case domain.Eq:
			res[c.Path] = c.Value
		case domain.In:
			res[c.Path] = bson.M{"$in": c.Values}
		case domain.Gte:
			res[c.Path] = merge(res[c.Path], "$gte", c.Bound)
		case domain.Lte:
			res[c.Path] = merge(res[c.Path], "$lte", c.Bound)
		}
	}
	return res
}

// merge folds several bounds on the same path into one operator document.
func merge(existing any, op string, bound string) bson.M {
	m, ok := existing.(bson.M)
	if !ok {
		m = bson.M{}
	}
	m[op] = bound
	return m
}

// CompileUpdate translates a tagged update operation into a bson document.
func CompileUpdate(update domain.Update) bson.M {
	switch u := update.(type) {
	case domain.Push:
		return bson.M{"$push": bson.M{u.Path: u.Value}}
	case domain.Pull:
		return bson.M{"$pull": bson.M{u.Path: u.Value}}
	default:
		return bson.M{}
	}
}

// CompilePipeline translates the recognized distinct-values pipeline shape
// into a driver pipeline. The sort stage is always appended because the
// contract promises ascending results.
func CompilePipeline(pipeline domain.Pipeline) (mongo.Pipeline, bool) {
	path, ok := pipeline.DistinctValues()
	if !ok {
		return nil, false
	}
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$" + path}},
		{{Key: "$group", Value: bson.M{domain.IDField: "$" + path}}},
		{{Key: "$sort", Value: bson.M{domain.IDField: 1}}},
	}, true
}

func toBSON(doc domain.Document) bson.M {
	res := make(bson.M, len(doc))
	for k, v := range doc {
		res[k] = toBSONValue(v)
	}
	return res
}

func toBSONValue(v any) any {
	switch t := v.(type) {
	case domain.Document:
		return toBSON(t)
	case map[string]any:
		return toBSON(domain.Document(t))
	case []any:
		res := make(bson.A, len(t))
		for n, item := range t {
			res[n] = toBSONValue(item)
		}
		return res
	default:
		return t
	}
}

func fromBSON(m bson.M) domain.Document {
	res := make(domain.Document, len(m))
	for k, v := range m {
		res[k] = fromBSONValue(v)
	}
	return res
}

func fromBSONValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return fromBSON(t)
	case bson.D:
		m := make(domain.Document, len(t))
		for _, e := range t {
			m[e.Key] = fromBSONValue(e.Value)
		}
		return m
	case bson.A:
		res := make([]any, len(t))
		for n, item := range t {
			res[n] = fromBSONValue(item)
		}
		return res
	case []any:
		res := make([]any, len(t))
		for n, item := range t {
			res[n] = fromBSONValue(item)
		}
		return res
	case int32:
		return int(t)
	case int64:
		return int(t)
	default:
		return t
	}
}
