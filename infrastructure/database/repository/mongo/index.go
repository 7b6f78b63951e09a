package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"livegate.io/infrastructure/logger"
)

const queryTimeout = 15 * time.Second

func (repo *MongoRepository[T]) CreateOne(ctx context.Context, payload T) (*T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	parsed := payload.ParseModel()
	_, err := repo.Model.InsertOne(c, parsed)
	if err != nil {
		logger.Error("an error occured while running CreateOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	model := parsed.(*T)
	return model, nil
}

func (repo *MongoRepository[T]) FindOneByID(id string) (*T, error) {
	c, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var result T
	err := repo.Model.FindOne(c, bson.M{"_id": id}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Error("an error occured while running FindOneByID", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "id",
			Data: id,
		})
		return nil, err
	}
	return &result, nil
}

func (repo *MongoRepository[T]) FindOneByFilter(filter map[string]interface{}) (*T, error) {
	c, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var result T
	err := repo.Model.FindOne(c, filter).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Error("an error occured while running FindOneByFilter", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	return &result, nil
}

func (repo *MongoRepository[T]) UpdatePartialByID(id string, payload map[string]interface{}) (int64, error) {
	c, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	payload["updatedAt"] = time.Now()
	result, err := repo.Model.UpdateOne(c, bson.M{"_id": id}, bson.M{"$set": payload})
	if err != nil {
		logger.Error("an error occured while running UpdatePartialByID", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "id",
			Data: id,
		})
		return 0, err
	}
	return result.ModifiedCount, nil
}
