package repository

import (
	"sync"

	"livegate.io/entities"
	"livegate.io/infrastructure/database/connection/datastore"
	"livegate.io/infrastructure/database/repository/mongo"
)

var draftOnce = sync.Once{}

var draftRepository mongo.MongoRepository[entities.VerificationDraft]

func DraftRepo() *mongo.MongoRepository[entities.VerificationDraft] {
	draftOnce.Do(func() {
		draftRepository = mongo.MongoRepository[entities.VerificationDraft]{Model: datastore.DraftModel}
	})
	return &draftRepository
}
