// Package mongostore provides a record.Store on MongoDB.
//
// Records live in one collection, "individuals" by default. Each document is
// keyed by "<owner>/<id>" and carries a seq field so List returns records in
// insertion order.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/pedigree/pkg/cache"
	pederrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/record"
)

// DefaultCollection is the collection used when Options.Collection is empty.
const DefaultCollection = "individuals"

// Options configures a Store.
type Options struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// document is the stored form of a record.
type document[P any] struct {
	Key        string `bson:"_id"`
	Owner      string `bson:"owner"`
	ID         string `bson:"id"`
	Name       string `bson:"name,omitempty"`
	Sex        string `bson:"sex,omitempty"`
	DamID      string `bson:"dam_id,omitempty"`
	SireID     string `bson:"sire_id,omitempty"`
	Attributes P      `bson:"attributes,omitempty"`
	Seq        int64  `bson:"seq"`
}

// Store keeps records in a MongoDB collection.
type Store[P any] struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// Open connects to MongoDB, pings the primary and ensures the owner index.
func Open[P any](ctx context.Context, opts Options) (*Store[P], error) {
	if opts.URI == "" || opts.Database == "" {
		return nil, pederrors.New(pederrors.ErrCodeInvalidConfig, "mongo store needs a uri and a database")
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, pederrors.Wrap(pederrors.ErrCodeStoreUnavailable, classify(err), "ping mongo")
	}

	s := New[P](client.Database(opts.Database).Collection(opts.Collection))
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps an existing collection. Close does not disconnect its client.
func New[P any](coll *mongo.Collection) *Store[P] {
	return &Store[P]{coll: coll, now: time.Now}
}

// EnsureIndexes creates the (owner, seq) index used by List.
func (s *Store[P]) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "seq", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create index: %w", classify(err))
	}
	return nil
}

// Put inserts or replaces records for owner. A replaced record keeps its
// original seq.
func (s *Store[P]) Put(ctx context.Context, owner string, recs ...record.Record[P]) error {
	if err := pederrors.ValidateOwner(owner); err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}

	base := s.now().UnixNano()
	models := make([]mongo.WriteModel, 0, len(recs))
	for i, r := range recs {
		if err := pederrors.ValidateIndividualID(r.ID); err != nil {
			return err
		}
		doc := toDocument(owner, r, base+int64(i))
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": doc.Key}).
			SetUpdate(updateFor(doc)).
			SetUpsert(true))
	}

	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("write records: %w", classify(err))
	}
	return nil
}

// List returns the owner's records in insertion order.
func (s *Store[P]) List(ctx context.Context, owner string) ([]record.Record[P], error) {
	cur, err := s.coll.Find(ctx, ownerFilter(owner), options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = cur.Close(context.Background()) }()

	var recs []record.Record[P]
	for cur.Next(ctx) {
		var doc document[P]
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		recs = append(recs, doc.record())
	}
	if err := cur.Err(); err != nil {
		return nil, classify(err)
	}
	return recs, nil
}

// Delete removes one record.
func (s *Store[P]) Delete(ctx context.Context, owner, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": documentKey(owner, id)})
	return classify(err)
}

// Close disconnects the client opened by Open.
func (s *Store[P]) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

func documentKey(owner, id string) string { return owner + "/" + id }

func ownerFilter(owner string) bson.M { return bson.M{"owner": owner} }

func toDocument[P any](owner string, r record.Record[P], seq int64) document[P] {
	return document[P]{
		Key:        documentKey(owner, r.ID),
		Owner:      owner,
		ID:         r.ID,
		Name:       r.Name,
		Sex:        string(r.Sex),
		DamID:      r.DamID,
		SireID:     r.SireID,
		Attributes: r.Payload,
		Seq:        seq,
	}
}

func (d document[P]) record() record.Record[P] {
	return record.Record[P]{
		ID:      d.ID,
		Name:    d.Name,
		Sex:     record.ParseSex(d.Sex),
		DamID:   d.DamID,
		SireID:  d.SireID,
		Payload: d.Attributes,
	}
}

// updateFor replaces every field but seq, which is only set on insert.
func updateFor[P any](d document[P]) bson.M {
	return bson.M{
		"$set": bson.M{
			"owner":      d.Owner,
			"id":         d.ID,
			"name":       d.Name,
			"sex":        d.Sex,
			"dam_id":     d.DamID,
			"sire_id":    d.SireID,
			"attributes": d.Attributes,
		},
		"$setOnInsert": bson.M{"seq": d.Seq},
	}
}

// classify marks network and server-selection failures retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrUnavailable, err))
	}
	return err
}

var _ record.Store[record.Attributes] = (*Store[record.Attributes])(nil)
