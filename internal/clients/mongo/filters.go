package mongo

import "go.mongodb.org/mongo-driver/v2/bson"

// NotTrue matches a boolean field that is false or absent.
var NotTrue = bson.M{"$ne": true}

// newestFirst orders documents by creation time, ties broken by _id.
var newestFirst = bson.D{
	{Key: "created_at", Value: -1},
	{Key: "_id", Value: -1},
}
