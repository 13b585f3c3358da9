// Package docstore persists schemaless JSON documents grouped in named
// collections. Collections mirror the layout used by the ordering front-end
// (for example "Appointments", "Services" and "Services/{id}/Option").
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a document id does not exist.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrDuplicate is returned when inserting an id that already exists.
	ErrDuplicate = errors.New("docstore: document already exists")
)

// Collection names shared with the ordering front-end.
const (
	Orders     = "Appointments"
	Products   = "Services"
	Categories = "Type"
	Promotions = "Discount"
	Users      = "USERS"
	Facilities = "base"
	Settings   = "Settings"
)

// ProductOptions returns the sub-collection holding a product's options.
func ProductOptions(productID string) string {
	return Products + "/" + productID + "/Option"
}

// Document is one stored record.
type Document struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is implemented by every backend.
type Store interface {
	// List returns every document in the collection, oldest first.
	List(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Insert creates a document. An empty id is replaced by a generated one.
	Insert(ctx context.Context, collection, id string, data any) (string, error)
	// Put creates or fully replaces a document.
	Put(ctx context.Context, collection, id string, data any) error
	// Merge overwrites the given top level fields of an existing document.
	Merge(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes a document; deleting a missing id is not an error.
	Delete(ctx context.Context, collection, id string) error
	// DeleteCollection removes all documents of a collection.
	DeleteCollection(ctx context.Context, collection string) (int64, error)
	Count(ctx context.Context, collection string) (int64, error)
	// WithTx runs fn atomically. Stores passed to fn must not escape it.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
}

// DecodeError reports documents that could not be decoded.
type DecodeError struct {
	Collection string
	IDs        []string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("docstore: %d malformed document(s) in %s (%s): %v", len(e.IDs), e.Collection, strings.Join(e.IDs, ","), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode unmarshals a document into T and hands the id to assign.
func Decode[T any](doc Document, assign func(id string, v *T)) (T, error) {
	var v T
	if err := json.Unmarshal(doc.Data, &v); err != nil {
		return v, fmt.Errorf("docstore: decode %s: %w", doc.ID, err)
	}
	if assign != nil {
		assign(doc.ID, &v)
	}
	return v, nil
}

// Collect decodes every document. Documents that fail to decode are
// skipped; the returned slice always holds the ones that succeeded and the
// error, when non-nil, is a *DecodeError naming the skipped ids.
func Collect[T any](collection string, docs []Document, assign func(id string, v *T)) ([]T, error) {
	out := make([]T, 0, len(docs))
	var bad *DecodeError
	for _, doc := range docs {
		v, err := Decode(doc, assign)
		if err != nil {
			if bad == nil {
				bad = &DecodeError{Collection: collection, Err: err}
			}
			bad.IDs = append(bad.IDs, doc.ID)
			continue
		}
		out = append(out, v)
	}
	if bad != nil {
		return out, bad
	}
	return out, nil
}

// ListAs lists a collection and decodes it with Collect.
func ListAs[T any](ctx context.Context, s Store, collection string, assign func(id string, v *T)) ([]T, error) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	return Collect(collection, docs, assign)
}

// GetAs loads a single document into T.
func GetAs[T any](ctx context.Context, s Store, collection, id string, assign func(id string, v *T)) (T, error) {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode(doc, assign)
}

// IsMalformed reports whether err only describes skipped documents.
func IsMalformed(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func encode(data any) (json.RawMessage, error) {
	if raw, ok := data.(json.RawMessage); ok {
		return raw, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("docstore: documents must be JSON objects")
	}
	return raw, nil
}

func validName(collection, id string) error {
	if strings.TrimSpace(collection) == "" {
		return errors.New("docstore: collection required")
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("docstore: id required")
	}
	return nil
}
