// Package storetest provides an in-memory stand-in for the Mongo
// repositories. Records round-trip through BSON so that $set patches,
// field names and date precision behave as they do against a server.
package storetest

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/mongo"
)

const duplicateKeyCode = 11000

type Memory[T any] struct {
	mu     sync.Mutex
	docs   map[string]bson.M
	order  []string
	unique []string

	// Err, when set, is returned by every operation.
	Err error
}

// New returns an empty store enforcing uniqueness on the given fields.
func New[T any](unique ...string) *Memory[T] {
	return &Memory[T]{
		docs:   map[string]bson.M{},
		unique: unique,
	}
}

func (m *Memory[T]) Create(ctx context.Context, item T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	doc, err := toDoc(item)
	if err != nil {
		return err
	}
	id, _ := doc["_id"].(string)
	if _, exists := m.docs[id]; exists {
		return duplicateKey()
	}
	if m.conflicts(id, doc) {
		return duplicateKey()
	}
	m.docs[id] = doc
	m.order = append(m.order, id)
	return nil
}

func (m *Memory[T]) FindByID(ctx context.Context, id string) (T, error) {
	return m.FindOne(ctx, bson.M{"_id": id})
}

// FindOne matches top-level fields by equality.
func (m *Memory[T]) FindOne(ctx context.Context, filter bson.M) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if m.Err != nil {
		return zero, m.Err
	}

	for _, id := range m.order {
		doc := m.docs[id]
		if matches(doc, filter) {
			return fromDoc[T](doc)
		}
	}
	return zero, mongo.ErrNoDocuments
}

func (m *Memory[T]) List(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	items := make([]T, 0, len(m.order))
	for _, id := range m.order {
		item, err := fromDoc[T](m.docs[id])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *Memory[T]) Update(ctx context.Context, id string, set bson.M) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if m.Err != nil {
		return zero, m.Err
	}

	doc, ok := m.docs[id]
	if !ok {
		return zero, mongo.ErrNoDocuments
	}

	patch, err := toDoc(set)
	if err != nil {
		return zero, err
	}
	next := bson.M{}
	for k, v := range doc {
		next[k] = v
	}
	for k, v := range patch {
		next[k] = v
	}
	if m.conflicts(id, next) {
		return zero, duplicateKey()
	}
	m.docs[id] = next
	return fromDoc[T](next)
}

func (m *Memory[T]) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}

	if _, ok := m.docs[id]; !ok {
		return false, nil
	}
	delete(m.docs, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *Memory[T]) conflicts(id string, doc bson.M) bool {
	for _, field := range m.unique {
		value, ok := doc[field]
		if !ok || value == nil {
			continue
		}
		for otherID, other := range m.docs {
			if otherID != id && other[field] == value {
				return true
			}
		}
	}
	return false
}

func matches(doc, filter bson.M) bool {
	for k, v := range filter {
		if doc[k] != v {
			return false
		}
	}
	return true
}

func toDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDoc[T any](doc bson.M) (T, error) {
	var out T
	raw, err := bson.Marshal(doc)
	if err != nil {
		return out, err
	}
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(raw))
	if err != nil {
		return out, err
	}
	dec.DefaultDocumentM()
	err = dec.Decode(&out)
	return out, err
}

func duplicateKey() error {
	return mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: duplicateKeyCode, Message: "E11000 duplicate key error"}},
	}
}
