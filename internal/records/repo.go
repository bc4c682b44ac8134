package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farmdash/internal/farm"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

// Repo persists category records.
type Repo interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, r *Record) error
	FindByID(ctx context.Context, category, id string) (*Record, error)
	List(ctx context.Context, q ListQuery) ([]*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, category, id string) error
	Count(ctx context.Context, category string) (int64, error)
}

// MongoRepo keeps one collection per category.
type MongoRepo struct {
	db *mongo.Database
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{db: db}
}

func (r *MongoRepo) coll(category string) *mongo.Collection {
	s, err := farm.Lookup(category)
	name := category
	if err == nil {
		name = s.Path
	}
	return r.db.Collection(strings.ReplaceAll(name, "-", "_"))
}

// EnsureIndexes creates the date and insertion-order indexes of every
// category collection
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	for _, s := range farm.Schemas() {
		indexes := []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "created_at", Value: 1}},
			},
		}
		if c, ok := s.DateColumn(); ok {
			indexes = append(indexes, mongo.IndexModel{
				Keys: bson.D{{Key: c.Field, Value: -1}},
			})
		}
		if _, err := r.coll(s.Category).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes for %s: %w", s.Category, err)
		}
	}
	return nil
}

// Insert creates a new record
func (r *MongoRepo) Insert(ctx context.Context, rec *Record) error {
	oid := primitive.NewObjectID()
	doc := bson.M{}
	for k, v := range rec.Fields {
		doc[k] = v
	}
	doc["_id"] = oid
	doc["created_at"] = rec.CreatedAt
	doc["updated_at"] = rec.UpdatedAt

	if _, err := r.coll(rec.Category).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s record: %w", rec.Category, err)
	}
	rec.ID = oid.Hex()
	return nil
}

// FindByID retrieves a record by its ID
func (r *MongoRepo) FindByID(ctx context.Context, category, id string) (*Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	var doc bson.M
	err = r.coll(category).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s record %s: %w", category, id, err)
	}
	return fromBSON(category, doc), nil
}

// List retrieves records in insertion order with an optional date range
func (r *MongoRepo) List(ctx context.Context, q ListQuery) ([]*Record, error) {
	filter := bson.M{}
	if q.DateField != "" && (q.Since != "" || q.Until != "") {
		dateFilter := bson.M{}
		if q.Since != "" {
			dateFilter["$gte"] = q.Since
		}
		if q.Until != "" {
			dateFilter["$lte"] = q.Until
		}
		filter[q.DateField] = dateFilter
	}

	opts := options.Find().
		SetSkip(int64(q.offset())).
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit := q.limit(); limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll(q.Category).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", q.Category, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s records: %w", q.Category, err)
	}
	out := make([]*Record, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromBSON(q.Category, doc))
	}
	return out, nil
}

// Update replaces the stored fields of a record
func (r *MongoRepo) Update(ctx context.Context, rec *Record) error {
	oid, err := primitive.ObjectIDFromHex(rec.ID)
	if err != nil {
		return ErrRecordNotFound
	}
	doc := bson.M{}
	for k, v := range rec.Fields {
		doc[k] = v
	}
	doc["created_at"] = rec.CreatedAt
	doc["updated_at"] = rec.UpdatedAt

	result, err := r.coll(rec.Category).ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("update %s record: %w", rec.Category, err)
	}
	if result.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes a record by ID
func (r *MongoRepo) Delete(ctx context.Context, category, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrRecordNotFound
	}
	result, err := r.coll(category).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete %s record: %w", category, err)
	}
	if result.DeletedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Count returns the number of records in a category
func (r *MongoRepo) Count(ctx context.Context, category string) (int64, error) {
	count, err := r.coll(category).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count %s records: %w", category, err)
	}
	return count, nil
}

func fromBSON(category string, doc bson.M) *Record {
	rec := &Record{Category: category, Fields: make(map[string]any, len(doc))}
	for k, v := range doc {
		switch k {
		case "_id":
			if oid, ok := v.(primitive.ObjectID); ok {
				rec.ID = oid.Hex()
			} else {
				rec.ID = fmt.Sprint(v)
			}
		case "created_at":
			rec.CreatedAt = bsonTime(v)
		case "updated_at":
			rec.UpdatedAt = bsonTime(v)
		default:
			rec.Fields[k] = v
		}
	}
	return rec
}

func bsonTime(v any) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time()
	case time.Time:
		return t
	default:
		return time.Time{}
	}
}
