package startup

import (
	"livegate.io/application/services/verification"
	"livegate.io/infrastructure/database"
	"livegate.io/infrastructure/database/connection/datastore"
	"livegate.io/infrastructure/inference"
	"livegate.io/infrastructure/logger"
)

// Used to start services such as loggers, databases, queues, etc.
func StartServices() {
	logger.InitializeLogger()
	database.SetUpDatabase()
	inference.InitialiseInferenceEngine()
	verification.Initialise()
}

// Used to clean up after services that have been shutdown.
func CleanUpServices() {
	datastore.CleanUp()
}
