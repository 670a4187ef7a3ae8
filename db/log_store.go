package db

import (
	"context"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

// LogStore records question/answer audit entries. Logging is best
// effort: failures are reported but never surfaced to the caller.
type LogStore interface {
	SaveQALog(ctx context.Context, log QALogModel)
	SaveAgentLog(ctx context.Context, log AgentLogModel)
}

type MongoLogStore struct {
	mongo    *mongo.Client
	database string
}

func ProvideLogStore(mongoClient *mongo.Client, database string) *MongoLogStore {
	return &MongoLogStore{mongo: mongoClient, database: database}
}

func (s *MongoLogStore) SaveQALog(ctx context.Context, log QALogModel) {
	_, err := async.Await(odm.CollectionOf[QALogModel](s.mongo, s.database).Save(ctx, log))
	if err != nil {
		logger.Error("Failed to save QA log", zap.String("company", log.Company), zap.Error(err))
	}
}

func (s *MongoLogStore) SaveAgentLog(ctx context.Context, log AgentLogModel) {
	_, err := async.Await(odm.CollectionOf[AgentLogModel](s.mongo, s.database).Save(ctx, log))
	if err != nil {
		logger.Error("Failed to save agent log", zap.String("company", log.Company), zap.Error(err))
	}
}
