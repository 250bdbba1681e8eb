// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"

	"github.com/gorse-io/reviewsim/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// MongoDB is a review source backed by a MongoDB collection. Documents are loaded in the
// order of _id.
type MongoDB struct {
	TablePrefix
	client *mongo.Client
	dbName string
}

// OpenMongo connects to MongoDB. The database name is taken from the connection string.
func OpenMongo(path, tablePrefix string) (*MongoDB, error) {
	cs, err := connstring.ParseAndValidate(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	database := &MongoDB{
		TablePrefix: TablePrefix(tablePrefix),
		dbName:      cs.Database,
	}
	if database.client, err = mongo.Connect(context.Background(), options.Client().ApplyURI(path)); err != nil {
		return nil, errors.Trace(err)
	}
	return database, nil
}

// Init creates the reviews collection and its indices.
func (db *MongoDB) Init() error {
	ctx := context.Background()
	d := db.client.Database(db.dbName)
	collections, err := d.ListCollectionNames(ctx, bson.M{"name": db.ReviewsTable()})
	if err != nil {
		return errors.Trace(err)
	}
	if len(collections) == 0 {
		if err = d.CreateCollection(ctx, db.ReviewsTable()); err != nil {
			return errors.Trace(err)
		}
	}
	_, err = d.Collection(db.ReviewsTable()).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"user_id": 1}},
		{Keys: bson.M{"item_id": 1}},
	})
	return errors.Trace(err)
}

func (db *MongoDB) Close() error {
	return db.client.Disconnect(context.Background())
}

func (db *MongoDB) LoadReviews(ctx context.Context) ([]dataset.Review, error) {
	c := db.client.Database(db.dbName).Collection(db.ReviewsTable())
	cursor, err := c.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer cursor.Close(ctx)
	var reviews []dataset.Review
	for cursor.Next(ctx) {
		var review dataset.Review
		if err = cursor.Decode(&review); err != nil {
			return nil, errors.Trace(err)
		}
		reviews = append(reviews, review)
	}
	return reviews, errors.Trace(cursor.Err())
}

func (db *MongoDB) BatchInsertReviews(ctx context.Context, reviews []dataset.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	c := db.client.Database(db.dbName).Collection(db.ReviewsTable())
	documents := lo.Map(reviews, func(review dataset.Review, _ int) any {
		return review
	})
	_, err := c.InsertMany(ctx, documents, options.InsertMany().SetOrdered(true))
	return errors.Trace(err)
}
