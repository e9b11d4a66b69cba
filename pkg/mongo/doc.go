// Package mongo connects the mongo-driver v2 client used by usage.MongoStore.
package mongo
