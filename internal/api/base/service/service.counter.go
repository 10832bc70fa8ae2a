package basesvc

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"meta_cmdb/internal/common"
)

// publicIDCounter is the per-collection counter document
// {_id: collection_name, counter: n}.
type publicIDCounter struct {
	ID      string `bson:"_id"`
	Counter int64  `bson:"counter"`
}

// CounterService allocates public IDs. Allocation is a single atomic
// increment-and-return on the counter document, so concurrent writers
// never observe the same value and the counter only moves up.
type CounterService struct {
	collection *mongo.Collection
}

// NewCounterService creates a counter service over the counters
// collection.
func NewCounterService(collection *mongo.Collection) *CounterService {
	return &CounterService{collection: collection}
}

// NextPublicID atomically increments the counter for the collection and
// returns the new value. The first allocation for a collection upserts
// the counter document and returns 1.
func (s *CounterService) NextPublicID(ctx context.Context, collectionName string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc publicIDCounter
	err := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": collectionName},
		bson.M{"$inc": bson.M{"counter": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, common.WrapManagerError(common.ErrManagerInsert, "public id allocation failed", common.ConvertMongoError(err))
	}

	return doc.Counter, nil
}

// HighestID returns the current counter value for the collection, 0
// when nothing was allocated yet.
func (s *CounterService) HighestID(ctx context.Context, collectionName string) (int64, error) {
	var doc publicIDCounter
	err := s.collection.FindOne(ctx, bson.M{"_id": collectionName}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, common.ConvertMongoError(err)
	}
	return doc.Counter, nil
}

// EnsureAtLeast raises the counter to at least value. Used after bulk
// imports that carry their own public IDs; $max never lowers the
// counter, preserving monotonicity under concurrent allocations.
func (s *CounterService) EnsureAtLeast(ctx context.Context, collectionName string, value int64) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.collection.UpdateOne(
		ctx,
		bson.M{"_id": collectionName},
		bson.M{"$max": bson.M{"counter": value}},
		opts,
	)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}
