package areas

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("area not found")

// AreaRepository defines persistence operations for areas
type AreaRepository interface {
	Upsert(ctx context.Context, a *Area) error
	Get(ctx context.Context, id string) (*Area, error)
	List(ctx context.Context) ([]*Area, error)
}

// MongoAreaRepository implements AreaRepository using MongoDB
type MongoAreaRepository struct {
	col *mongo.Collection
}

func NewMongoAreaRepository(col *mongo.Collection) *MongoAreaRepository {
	return &MongoAreaRepository{col: col}
}

func (r *MongoAreaRepository) Upsert(ctx context.Context, a *Area) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{"$set": bson.M{
		"name":      a.Name,
		"ownerSub":  a.OwnerSub,
		"createdAt": a.CreatedAt,
		"updatedAt": a.UpdatedAt,
	}}, opts)
	return err
}

func (r *MongoAreaRepository) Get(ctx context.Context, id string) (*Area, error) {
	var a Area
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *MongoAreaRepository) List(ctx context.Context) ([]*Area, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Area{}
	for cur.Next(ctx) {
		var a Area
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, cur.Err()
}

// MemoryAreaRepository is the in-memory implementation used in tests and in
// the Mongo-less deployment mode.
type MemoryAreaRepository struct {
	mu    sync.RWMutex
	store map[string]*Area
}

func NewMemoryAreaRepository() *MemoryAreaRepository {
	return &MemoryAreaRepository{store: make(map[string]*Area)}
}

func (r *MemoryAreaRepository) Upsert(ctx context.Context, a *Area) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	cp := *a
	r.store[a.ID] = &cp
	return nil
}

func (r *MemoryAreaRepository) Get(ctx context.Context, id string) (*Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryAreaRepository) List(ctx context.Context) ([]*Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Area, 0, len(r.store))
	for _, a := range r.store {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}
