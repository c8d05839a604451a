// Package mongodb provides a MongoDB-backed implementation of the
// storage.Storage interface.
//
// Documents in the students collection look like:
//
//	{ "_id": ObjectId("..."), "name": "John Doe", "age": 25, "created_at": ISODate("...") }
//
// The ObjectId is exposed to clients as its 24-character hex string.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

// document is the BSON shape of a student.
type document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Age       int                `bson:"age"`
	CreatedAt time.Time          `bson:"created_at,omitempty"`
}

func (d document) summary() types.Student {
	return types.Student{ID: d.ID.Hex(), Name: d.Name, Age: d.Age}
}

// Mongo is the concrete implementation of storage.Storage.
type Mongo struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
	now        func() time.Time
}

// Connect dials uri, proves the server answers a ping, and binds the
// database/collection pair. The client is disconnected again if the ping
// fails, so a failed Connect leaves nothing open.
func Connect(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Connect: ping: %w", err)
	}

	return newMongo(client, client.Database(database).Collection(collection)), nil
}

// newMongo binds a store to an already connected client.
func newMongo(client *mongo.Client, collection *mongo.Collection) *Mongo {
	return &Mongo{
		client:     client,
		db:         collection.Database(),
		collection: collection,
		// BSON dates carry millisecond precision.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (m *Mongo) CreateStudent(ctx context.Context, name string, age int) (types.Student, error) {
	doc := document{Name: name, Age: age, CreatedAt: m.now()}

	result, err := m.collection.InsertOne(ctx, doc)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: insert: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return types.Student{}, fmt.Errorf("CreateStudent: unexpected inserted id type %T", result.InsertedID)
	}

	student := types.Student{ID: oid.Hex(), Name: name, Age: age, CreatedAt: &doc.CreatedAt}
	return student, nil
}

func (m *Mongo) GetStudents(ctx context.Context) ([]types.Student, error) {
	return m.find(ctx, bson.D{}, "GetStudents")
}

func (m *Mongo) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	oid, err := parseID(id)
	if err != nil {
		return types.Student{}, err
	}

	var doc document
	err = m.collection.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Student{}, fmt.Errorf("no student found with id %s: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: find: %w", err)
	}

	return doc.summary(), nil
}

func (m *Mongo) DeleteStudentByID(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := m.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("no student found with id %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

func (m *Mongo) SearchStudentsByName(ctx context.Context, query string) ([]types.Student, error) {
	return m.find(ctx, nameFilter(query), "SearchStudentsByName")
}

// Ping runs the ping command against the bound database.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) find(ctx context.Context, filter bson.D, op string) ([]types.Student, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "created_at", Value: 0}})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cursor.Close(ctx)

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	students := make([]types.Student, 0, len(docs))
	for _, d := range docs {
		students = append(students, d.summary())
	}
	return students, nil
}

// nameFilter matches query anywhere in name, ignoring case. The query is
// quoted so regex metacharacters in a name are matched literally.
func nameFilter(query string) bson.D {
	return bson.D{{
		Key:   "name",
		Value: primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"},
	}}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%q is not an ObjectID: %w", id, storage.ErrInvalidID)
	}
	return oid, nil
}

var _ storage.Storage = (*Mongo)(nil)
