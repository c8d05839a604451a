package mongodb

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aanand-mishra/students-api/internal/storage"
)

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := parseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	for _, bad := range []string{"", "1", "not-an-id", oid.Hex() + "00"} {
		_, err := parseID(bad)
		assert.ErrorIs(t, err, storage.ErrInvalidID, "id %q", bad)
	}
}

func TestNameFilter(t *testing.T) {
	filter := nameFilter("ce Jo")
	require.Len(t, filter, 1)
	assert.Equal(t, "name", filter[0].Key)

	re, ok := filter[0].Value.(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, "i", re.Options)

	compiled := regexp.MustCompile("(?i)" + re.Pattern)
	assert.True(t, compiled.MatchString("Alice Johnson"))
	assert.False(t, compiled.MatchString("Bob Wilson"))
}

func TestNameFilter_QuotesMetacharacters(t *testing.T) {
	re := nameFilter("a.b*")[0].Value.(primitive.Regex)
	compiled := regexp.MustCompile("(?i)" + re.Pattern)

	assert.True(t, compiled.MatchString("xA.B*y"))
	assert.False(t, compiled.MatchString("axxbbb"))
}

func TestDocumentSummary(t *testing.T) {
	oid := primitive.NewObjectID()
	d := document{ID: oid, Name: "Jane", Age: 22, CreatedAt: time.Now()}

	s := d.summary()
	assert.Equal(t, oid.Hex(), s.ID)
	assert.Equal(t, "Jane", s.Name)
	assert.Equal(t, 22, s.Age)
	assert.Nil(t, s.CreatedAt)
}

func TestConnect_UnreachableServerFails(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	// Port 1 is reserved and never runs MongoDB.
	_, err := Connect(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200", "student_db", "students")
	assert.Error(t, err)
}
