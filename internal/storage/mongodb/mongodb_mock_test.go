package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/aanand-mishra/students-api/internal/storage"
)

// mockStore binds a store to the mock deployment of mt.
func mockStore(mt *mtest.T) *Mongo {
	m := newMongo(mt.Client, mt.Coll)
	m.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func studentDoc(oid primitive.ObjectID, name string, age int) bson.D {
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "name", Value: name},
		{Key: "age", Value: age},
	}
}

func TestMongo_CreateStudent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("inserted id is returned as hex", func(mt *mtest.T) {
		m := mockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := m.CreateStudent(context.Background(), "Jane Doe", 22)
		require.NoError(mt, err)

		_, err = primitive.ObjectIDFromHex(got.ID)
		assert.NoError(mt, err)
		assert.Equal(mt, "Jane Doe", got.Name)
		assert.Equal(mt, 22, got.Age)
		require.NotNil(mt, got.CreatedAt)
		assert.Equal(mt, m.now(), *got.CreatedAt)
	})

	mt.Run("server error is wrapped", func(mt *mtest.T) {
		m := mockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "duplicate key",
			Name:    "DuplicateKey",
		}))

		_, err := m.CreateStudent(context.Background(), "Jane Doe", 22)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "CreateStudent: insert")
		assert.NotErrorIs(mt, err, storage.ErrNotFound)
	})
}

func TestMongo_GetStudentByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		m := mockStore(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			studentDoc(oid, "Alice Johnson", 20)))

		got, err := m.GetStudentByID(context.Background(), oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), got.ID)
		assert.Equal(mt, "Alice Johnson", got.Name)
		assert.Equal(mt, 20, got.Age)
		assert.Nil(mt, got.CreatedAt)
	})

	mt.Run("no documents maps to not found", func(mt *mtest.T) {
		m := mockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := m.GetStudentByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, storage.ErrNotFound)
	})

	mt.Run("invalid id never reaches the server", func(mt *mtest.T) {
		m := mockStore(mt)

		_, err := m.GetStudentByID(context.Background(), "not-an-id")
		assert.ErrorIs(mt, err, storage.ErrInvalidID)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestMongo_DeleteStudentByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted", func(mt *mtest.T) {
		m := mockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := m.DeleteStudentByID(context.Background(), primitive.NewObjectID().Hex())
		assert.NoError(mt, err)
	})

	mt.Run("nothing deleted maps to not found", func(mt *mtest.T) {
		m := mockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := m.DeleteStudentByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, storage.ErrNotFound)
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		m := mockStore(mt)

		err := m.DeleteStudentByID(context.Background(), "123")
		assert.ErrorIs(mt, err, storage.ErrInvalidID)
	})
}

func TestMongo_GetStudents(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("summaries without created_at", func(mt *mtest.T) {
		m := mockStore(mt)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			studentDoc(a, "Alice Johnson", 20),
			studentDoc(b, "Bob Smith", 22)))

		got, err := m.GetStudents(context.Background())
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, a.Hex(), got[0].ID)
		assert.Equal(mt, "Bob Smith", got[1].Name)
		for _, s := range got {
			assert.Nil(mt, s.CreatedAt)
		}

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		projection, ok := started.Command.Lookup("projection").DocumentOK()
		require.True(mt, ok)
		assert.Equal(mt, int32(0), projection.Lookup("created_at").Int32())
	})

	mt.Run("empty collection yields empty slice", func(mt *mtest.T) {
		m := mockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		got, err := m.GetStudents(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})

	mt.Run("find error is wrapped", func(mt *mtest.T) {
		m := mockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
			Name:    "BadValue",
		}))

		_, err := m.GetStudents(context.Background())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "GetStudents: find")
	})
}

func TestMongo_SearchStudentsByName(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sends case-insensitive regex filter", func(mt *mtest.T) {
		m := mockStore(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			studentDoc(oid, "Alice Johnson", 20)))

		got, err := m.SearchStudentsByName(context.Background(), "alice")
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, oid.Hex(), got[0].ID)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		pattern, options := started.Command.Lookup("filter", "name").Regex()
		assert.Equal(mt, "alice", pattern)
		assert.Equal(mt, "i", options)
	})
}

func TestMongo_Ping(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("ok", func(mt *mtest.T) {
		m := mockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, m.Ping(context.Background()))
	})
}
