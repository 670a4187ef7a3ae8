package db

import (
	"context"
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// CompanyStore is the persistence surface the services need for tenant
// configuration.
type CompanyStore interface {
	Get(ctx context.Context, name string) (*CompanyModel, error)
	Save(ctx context.Context, company *CompanyModel) error
	Delete(ctx context.Context, name string) error
	All(ctx context.Context) ([]CompanyModel, error)
}

type MongoCompanyStore struct {
	mongo    *mongo.Client
	database string
}

func ProvideCompanyStore(mongoClient *mongo.Client, database string) *MongoCompanyStore {
	return &MongoCompanyStore{mongo: mongoClient, database: database}
}

func (s *MongoCompanyStore) Get(ctx context.Context, name string) (*CompanyModel, error) {
	return async.Await(odm.CollectionOf[CompanyModel](s.mongo, s.database).FindOneByID(ctx, name))
}

func (s *MongoCompanyStore) Save(ctx context.Context, company *CompanyModel) error {
	_, err := async.Await(odm.CollectionOf[CompanyModel](s.mongo, s.database).Save(ctx, *company))
	return err
}

func (s *MongoCompanyStore) Delete(ctx context.Context, name string) error {
	collection := s.mongo.Database(s.database).Collection(CompanyModel{}.CollectionName())
	result, err := collection.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("company %q not found", name)
	}
	return nil
}

func (s *MongoCompanyStore) All(ctx context.Context) ([]CompanyModel, error) {
	return async.Await(odm.CollectionOf[CompanyModel](s.mongo, s.database).Find(ctx, bson.M{}, nil, 0, 0))
}
