package mongostore

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matzehuels/pedigree/pkg/cache"
	pederrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/record"
)

func TestDocumentRoundTrip(t *testing.T) {
	in := record.Record[record.Attributes]{
		ID:      "A",
		Name:    "Atlas",
		Sex:     record.Male,
		DamID:   "B",
		SireID:  "C",
		Payload: record.Attributes{"morph": "pastel"},
	}
	doc := toDocument("alice", in, 7)
	if doc.Key != "alice/A" || doc.Owner != "alice" || doc.Seq != 7 {
		t.Fatalf("doc = %+v", doc)
	}

	data, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var back document[record.Attributes]
	if err := bson.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	out := back.record()
	if out.ID != "A" || out.Name != "Atlas" || out.Sex != record.Male || out.DamID != "B" || out.SireID != "C" {
		t.Errorf("record = %+v", out)
	}
	if out.Payload["morph"] != "pastel" {
		t.Errorf("payload = %v", out.Payload)
	}
}

func TestUpdateKeepsSeqOnInsertOnly(t *testing.T) {
	u := updateFor(toDocument("alice", record.Record[record.Attributes]{ID: "A"}, 42))
	set, ok := u["$set"].(bson.M)
	if !ok {
		t.Fatal("missing $set")
	}
	if _, has := set["seq"]; has {
		t.Error("$set must not overwrite seq")
	}
	if u["$setOnInsert"].(bson.M)["seq"] != int64(42) {
		t.Errorf("$setOnInsert = %v", u["$setOnInsert"])
	}
}

func TestOpenRequiresConfig(t *testing.T) {
	_, err := Open[record.Attributes](context.Background(), Options{URI: "mongodb://localhost"})
	if !pederrors.Is(err, pederrors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("nil should stay nil")
	}
	err := classify(mongo.ErrClientDisconnected)
	if !cache.IsRetryable(err) || !errors.Is(err, cache.ErrUnavailable) {
		t.Errorf("disconnect should be retryable: %v", err)
	}
	if cache.IsRetryable(classify(mongo.ErrNoDocuments)) {
		t.Error("no documents should not be retryable")
	}
}

func TestCloseWithoutClient(t *testing.T) {
	s := New[record.Attributes](nil)
	if err := s.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}
