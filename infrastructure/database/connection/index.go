package connection

import (
	"livegate.io/infrastructure/database/connection/cache"
	"livegate.io/infrastructure/database/connection/datastore"
)

func ConnectToDatabase() {
	datastore.ConnectToDatabase()
	cache.ConnectToCache()
}
