package repository

import (
	"context"
	"time"

	"github.com/qualikit/qualikit/backend/go-services/internal/ticket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements the ticket store on a MongoDB collection with the
// rev-filtered compare-and-swap used across this service.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "targetAreaId", Value: 1}, {Key: "state", Value: 1}}, Options: options.Index()}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, t *ticket.RequestTicket) (string, error) {
	if t.ID == "" {
		t.ID = "qtkt_" + time.Now().Format("20060102T150405.000000000")
	}
	t.Rev = 1
	if _, err := m.col.InsertOne(ctx, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*ticket.RequestTicket, error) {
	var t ticket.RequestTicket
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (m *MongoRepo) ListByArea(ctx context.Context, areaID string) ([]*ticket.RequestTicket, error) {
	cur, err := m.col.Find(ctx, bson.M{"targetAreaId": areaID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*ticket.RequestTicket{}
	for cur.Next(ctx) {
		var t ticket.RequestTicket
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, cur.Err()
}

func (m *MongoRepo) CompareAndSwap(ctx context.Context, t *ticket.RequestTicket) error {
	expected := t.Rev
	t.Rev = expected + 1
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": t.ID, "rev": expected}, t)
	if err != nil {
		t.Rev = expected
		return err
	}
	if res.MatchedCount == 0 {
		t.Rev = expected
		n, err := m.col.CountDocuments(ctx, bson.M{"_id": t.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrStaleVersion
	}
	return nil
}
