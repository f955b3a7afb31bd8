// Package memcollection contains the in-memory [domain.Collection]
// implementation, the emulation backend substituted when MongoDB is not
// reachable.
package memcollection

import (
	"context"
	"fmt"

	"github.com/vinicius-lino-figueiredo/bst"

	"github.com/mergington/schooldb/domain"
	"github.com/mergington/schooldb/internal/adapter/matcher"
	"github.com/mergington/schooldb/internal/adapter/modifier"
	"github.com/mergington/schooldb/pkg/ctxsync"
)

// Collection implements [domain.Collection] over a plain keyed table. It
// replicates the query, update and aggregation semantics of the MongoDB
// backend for the operation shapes this module uses. Traversal follows
// first-insertion order; overwriting a document keeps its original position.
//
// All methods serialize on an internal mutex, so a Collection is safe for use
// from multiple goroutines.
type Collection struct {
	mu       *ctxsync.Mutex
	docs     map[string]domain.Document
	order    []string
	matcher  domain.Matcher
	modifier domain.Modifier
	snapshot domain.Snapshotter
}

// Option configures collection behavior through the functional options
// pattern.
type Option func(*Collection)

// WithMatcher sets the matcher used to evaluate filters.
func WithMatcher(m domain.Matcher) Option {
	return func(c *Collection) { c.matcher = m }
}

// WithModifier sets the modifier used to apply updates.
func WithModifier(m domain.Modifier) Option {
	return func(c *Collection) { c.modifier = m }
}

// WithSnapshotter sets an optional snapshot persistence layer. When set, the
// collection loads it on [Collection.Load] and rewrites it after every
// mutation.
func WithSnapshotter(s domain.Snapshotter) Option {
	return func(c *Collection) { c.snapshot = s }
}

// NewCollection returns a new empty in-memory collection.
func NewCollection(options ...Option) *Collection {
	c := &Collection{
		mu:   ctxsync.NewMutex(),
		docs: make(map[string]domain.Document),
	}
	for _, option := range options {
		option(c)
	}
	if c.matcher == nil {
		c.matcher = matcher.NewMatcher()
	}
	if c.modifier == nil {
		c.modifier = modifier.NewModifier()
	}
	return c
}

// Load restores documents from the snapshot layer, if one is configured.
func (c *Collection) Load(ctx context.Context) error {
	if c.snapshot == nil {
		return nil
	}
	if err := c.mu.Lock(ctx); err != nil {
		return err
	}
	defer c.mu.Unlock()

	docs, err := c.snapshot.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	for _, doc := range docs {
		c.put(doc)
	}
	return nil
}

// FindOne implements [domain.Collection]. A filter carrying an identifier
// condition short-circuits to a direct key lookup.
func (c *Collection) FindOne(ctx context.Context, filter domain.Filter) (domain.Document, bool, error) {
	if err := c.mu.Lock(ctx); err != nil {
		return nil, false, err
	}
	defer c.mu.Unlock()

	if id, ok := filter.ID(); ok {
		doc, ok := c.docs[id]
		if !ok {
			return nil, false, nil
		}
		return doc.Clone(), true, nil
	}

	for _, id := range c.order {
		matches, err := c.matcher.Match(c.docs[id], filter)
		if err != nil {
			return nil, false, err
		}
		if matches {
			return c.docs[id].Clone(), true, nil
		}
	}
	return nil, false, nil
}

// Find implements [domain.Collection].
func (c *Collection) Find(ctx context.Context, filter domain.Filter) ([]domain.Document, error) {
	if err := c.mu.Lock(ctx); err != nil {
		return nil, err
	}
	defer c.mu.Unlock()
	return c.find(filter)
}

func (c *Collection) find(filter domain.Filter) ([]domain.Document, error) {
	res := make([]domain.Document, 0, len(c.order))
	for _, id := range c.order {
		matches, err := c.matcher.Match(c.docs[id], filter)
		if err != nil {
			return nil, err
		}
		if matches {
			res = append(res, c.docs[id].Clone())
		}
	}
	return res, nil
}

// Count implements [domain.Collection].
func (c *Collection) Count(ctx context.Context, filter domain.Filter) (int64, error) {
	if err := c.mu.Lock(ctx); err != nil {
		return 0, err
	}
	defer c.mu.Unlock()

	var count int64
	for _, id := range c.order {
		matches, err := c.matcher.Match(c.docs[id], filter)
		if err != nil {
			return 0, err
		}
		if matches {
			count++
		}
	}
	return count, nil
}

// Insert implements [domain.Collection]. An existing document under the same
// identifier is overwritten silently and keeps its traversal position.
func (c *Collection) Insert(ctx context.Context, doc domain.Document) error {
	if doc.ID() == "" {
		return domain.ErrMissingID
	}
	if err := c.mu.Lock(ctx); err != nil {
		return err
	}
	defer c.mu.Unlock()

	c.put(doc.Clone())
	return c.persist(ctx)
}

func (c *Collection) put(doc domain.Document) {
	id := doc.ID()
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = doc
}

// UpdateOne implements [domain.Collection]. Only the first match is modified.
func (c *Collection) UpdateOne(ctx context.Context, filter domain.Filter, update domain.Update) (int64, error) {
	if err := c.mu.Lock(ctx); err != nil {
		return 0, err
	}
	defer c.mu.Unlock()

	doc, ok, err := c.first(filter)
	if err != nil || !ok {
		return 0, err
	}

	modified, err := c.modifier.Modify(doc, update)
	if err != nil {
		return 0, err
	}
	c.docs[doc.ID()] = modified
	if err := c.persist(ctx); err != nil {
		return 0, err
	}
	return 1, nil
}

func (c *Collection) first(filter domain.Filter) (domain.Document, bool, error) {
	if id, ok := filter.ID(); ok {
		doc, ok := c.docs[id]
		return doc, ok, nil
	}
	for _, id := range c.order {
		matches, err := c.matcher.Match(c.docs[id], filter)
		if err != nil {
			return nil, false, err
		}
		if matches {
			return c.docs[id], true, nil
		}
	}
	return nil, false, nil
}

// Aggregate implements [domain.Collection]. Only the unwind-and-group
// distinct-values shape is recognized; anything else yields an empty result.
func (c *Collection) Aggregate(ctx context.Context, pipeline domain.Pipeline) ([]domain.Document, error) {
	path, ok := pipeline.DistinctValues()
	if !ok {
		return []domain.Document{}, nil
	}

	if err := c.mu.Lock(ctx); err != nil {
		return nil, err
	}
	defer c.mu.Unlock()

	// The tree keeps distinct values in ascending order while documents
	// are unwound in store order.
	tree := bst.NewBinarySearchTree(bst.Options{
		Unique:      true,
		CompareKeys: compareValues,
	})
	for _, id := range c.order {
		for _, value := range arrayAt(c.docs[id], path) {
			// A rejected duplicate leaves the tree unchanged,
			// which is exactly what grouping wants.
			_ = tree.Insert(value, value)
		}
	}

	res := []domain.Document{}
	tree.ExecuteOnEveryNode(func(node *bst.BinarySearchTree) {
		for _, value := range node.Data() {
			res = append(res, domain.Document{domain.IDField: value})
		}
	})
	return res, nil
}

func arrayAt(doc domain.Document, path string) []any {
	value, ok := matcher.Lookup(doc, path)
	if !ok {
		return nil
	}
	array, _ := value.([]any)
	return array
}

func compareValues(a, b any) int {
	sa, aok := a.(string)
	sb, bok := b.(string)
	if aok && bok {
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		default:
			return 0
		}
	}
	fa := fmt.Sprint(a)
	fb := fmt.Sprint(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

func (c *Collection) persist(ctx context.Context) error {
	if c.snapshot == nil {
		return nil
	}
	docs := make([]domain.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, c.docs[id])
	}
	if err := c.snapshot.Save(ctx, docs); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}
