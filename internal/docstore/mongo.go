package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	mongoCreatedField = "_created_at"
	mongoUpdatedField = "_updated_at"
)

// MongoStore maps collections onto MongoDB collections. Sub-collection paths
// such as "Services/42/Option" become "Services.42.Option".
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// NewMongoStore wraps an open database handle.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{client: client, db: db, now: time.Now}
}

func (s *MongoStore) coll(collection string) *mongo.Collection {
	return s.db.Collection(strings.ReplaceAll(collection, "/", "."))
}

func (s *MongoStore) List(ctx context.Context, collection string) ([]Document, error) {
	cur, err := s.coll(collection).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: mongoCreatedField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", collection, err)
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", collection, err)
	}
	docs := make([]Document, 0, len(raw))
	for _, m := range raw {
		doc, err := fromBSON(m)
		if err != nil {
			return nil, fmt.Errorf("docstore: list %s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var m bson.M
	err := s.coll(collection).FindOne(ctx, idFilter(id)).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("docstore: get %s/%s: %w", collection, id, err)
	}
	return fromBSON(m)
}

func (s *MongoStore) Insert(ctx context.Context, collection, id string, data any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if err := validName(collection, id); err != nil {
		return "", err
	}
	m, err := toBSON(data)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	m["_id"] = id
	m[mongoCreatedField] = now
	m[mongoUpdatedField] = now
	if _, err := s.coll(collection).InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%s/%s: %w", collection, id, ErrDuplicate)
		}
		return "", fmt.Errorf("docstore: insert %s/%s: %w", collection, id, err)
	}
	return id, nil
}

func (s *MongoStore) Put(ctx context.Context, collection, id string, data any) error {
	if err := validName(collection, id); err != nil {
		return err
	}
	m, err := toBSON(data)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	created := now
	var existing struct {
		CreatedAt time.Time `bson:"_created_at"`
	}
	err = s.coll(collection).FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{mongoCreatedField: 1})).Decode(&existing)
	switch {
	case err == nil && !existing.CreatedAt.IsZero():
		created = existing.CreatedAt
	case err != nil && !errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("docstore: put %s/%s: %w", collection, id, err)
	}
	m["_id"] = id
	m[mongoCreatedField] = created
	m[mongoUpdatedField] = now
	if _, err := s.coll(collection).ReplaceOne(ctx, bson.M{"_id": id}, m, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("docstore: put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	m, err := toBSON(fields)
	if err != nil {
		return err
	}
	m[mongoUpdatedField] = s.now().UTC()
	res, err := s.coll(collection).UpdateOne(ctx, idFilter(id), bson.M{"$set": m})
	if err != nil {
		return fmt.Errorf("docstore: merge %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.coll(collection).DeleteOne(ctx, idFilter(id)); err != nil {
		return fmt.Errorf("docstore: delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) DeleteCollection(ctx context.Context, collection string) (int64, error) {
	res, err := s.coll(collection).DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("docstore: delete collection %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) Count(ctx context.Context, collection string) (int64, error) {
	n, err := s.coll(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("docstore: count %s: %w", collection, err)
	}
	return n, nil
}

// WithTx runs fn inside a session transaction; requires a replica set.
// Calls made with the context handed to fn join the transaction.
func (s *MongoStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx, s)
	}
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("docstore: start session: %w", err)
	}
	defer session.EndSession(ctx)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// idFilter matches string ids and, for documents created by other tools,
// the equivalent ObjectID.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

func toBSON(data any) (bson.M, error) {
	raw, err := encode(data)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.UnmarshalExtJSON(raw, false, &m); err != nil {
		return nil, fmt.Errorf("docstore: to bson: %w", err)
	}
	if m == nil {
		m = bson.M{}
	}
	return m, nil
}

func fromBSON(m bson.M) (Document, error) {
	var doc Document
	switch id := m["_id"].(type) {
	case string:
		doc.ID = id
	case primitive.ObjectID:
		doc.ID = id.Hex()
	default:
		doc.ID = fmt.Sprint(id)
	}
	if dt, ok := m[mongoCreatedField].(primitive.DateTime); ok {
		doc.CreatedAt = dt.Time().UTC()
	}
	if dt, ok := m[mongoUpdatedField].(primitive.DateTime); ok {
		doc.UpdatedAt = dt.Time().UTC()
	}
	delete(m, "_id")
	delete(m, mongoCreatedField)
	delete(m, mongoUpdatedField)
	raw, err := bson.MarshalExtJSON(m, false, false)
	if err != nil {
		return Document{}, fmt.Errorf("docstore: from bson %s: %w", doc.ID, err)
	}
	doc.Data = raw
	return doc, nil
}

var _ Store = (*MongoStore)(nil)
