package repository

import (
	"context"
	"time"

	"github.com/qualikit/qualikit/backend/go-services/internal/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements the document store on a MongoDB collection. The rev
// field is the concurrency token: CompareAndSwap filters on it, so a
// concurrent writer makes the filter miss instead of silently losing the
// update.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// code is the human-facing unique handle
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, doc *document.ControlledDocument) (string, error) {
	if doc.ID == "" {
		doc.ID = "qdoc_" + time.Now().Format("20060102T150405.000000000")
	}
	doc.Rev = 1
	if _, err := m.col.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*document.ControlledDocument, error) {
	var d document.ControlledDocument
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*document.ControlledDocument, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.ControlledDocument{}
	for cur.Next(ctx) {
		var d document.ControlledDocument
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

// CompareAndSwap replaces the stored record only when its rev still matches
// doc.Rev. A matched-count of zero means either the record is gone or a
// concurrent writer advanced the rev; the follow-up existence check tells
// the two apart.
func (m *MongoRepo) CompareAndSwap(ctx context.Context, doc *document.ControlledDocument) error {
	expected := doc.Rev
	doc.Rev = expected + 1
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": doc.ID, "rev": expected}, doc)
	if err != nil {
		doc.Rev = expected
		return err
	}
	if res.MatchedCount == 0 {
		doc.Rev = expected
		n, err := m.col.CountDocuments(ctx, bson.M{"_id": doc.ID})
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
