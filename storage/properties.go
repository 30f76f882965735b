package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"property-pulse-server/models"
)

// DefaultSearchLimit caps filtered search results.
const DefaultSearchLimit = 12

type PropertyStore struct {
	store *Store
}

func NewPropertyStore(s *Store) *PropertyStore {
	return &PropertyStore{store: s}
}

// FindFiltered runs the built filter query sorted by creation time
// descending, with the owner's public profile subset joined in. A limit of
// zero or less returns all matches.
func (p *PropertyStore) FindFiltered(ctx context.Context, filter PropertyFilter, limit int64) ([]bson.M, error) {
	return p.findPopulated(ctx, filter.Query(), limit)
}

// FindLatest returns the newest listings for the homepage feed.
func (p *PropertyStore) FindLatest(ctx context.Context, limit int64) ([]bson.M, error) {
	return p.findPopulated(ctx, bson.M{}, limit)
}

// FindByID resolves a single listing with the owner populated. Returns
// ErrNotFound when no such listing exists.
func (p *PropertyStore) FindByID(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	docs, err := p.findPopulated(ctx, bson.M{"_id": id}, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

// FindByOwner returns every listing owned by the given user, owner not
// populated since the caller already knows it.
func (p *PropertyStore) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]bson.M, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := p.store.Properties().Find(ctx, bson.M{"owner": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// FindByIDs resolves a set of listing identifiers, used for the saved
// (bookmarked) feed. Missing identifiers are silently skipped.
func (p *PropertyStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]bson.M, error) {
	if len(ids) == 0 {
		return []bson.M{}, nil
	}
	return p.findPopulated(ctx, bson.M{"_id": bson.M{"$in": ids}}, 0)
}

func (p *PropertyStore) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	return p.store.Properties().CountDocuments(ctx, bson.M{"owner": ownerID})
}

// Get fetches a typed document for the mutation path.
func (p *PropertyStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var property models.Property
	err := p.store.Properties().FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (p *PropertyStore) Insert(ctx context.Context, property *models.Property) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	property.CreatedAt = now
	property.UpdatedAt = now

	result, err := p.store.Properties().InsertOne(ctx, property)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id := result.InsertedID.(primitive.ObjectID)
	property.ID = id
	return id, nil
}

func (p *PropertyStore) Replace(ctx context.Context, property *models.Property) error {
	property.UpdatedAt = time.Now().UTC()
	result, err := p.store.Properties().ReplaceOne(ctx, bson.M{"_id": property.ID}, property)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PropertyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := p.store.Properties().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// findPopulated runs an aggregation that sorts newest-first, applies the
// optional limit and joins the owner's firstName/lastName/email. Results come
// back as native documents so the serializer can flatten them for transport.
func (p *PropertyStore) findPopulated(ctx context.Context, query bson.M, limit int64) ([]bson.M, error) {
	pipeline := []bson.M{
		{"$match": query},
		{"$sort": bson.M{"createdAt": -1}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": limit})
	}
	pipeline = append(pipeline,
		bson.M{"$lookup": bson.M{
			"from":         "users",
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "owner",
			"pipeline": []bson.M{
				{"$project": bson.M{"firstName": 1, "lastName": 1, "email": 1}},
			},
		}},
		bson.M{"$unwind": bson.M{"path": "$owner", "preserveNullAndEmptyArrays": true}},
	)

	cursor, err := p.store.Properties().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
