package db

import (
	"context"
	"log"

	"roomdesk/internal/env"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Ctx = context.Background()
var RDB *redis.Client
var Client *mongo.Client

var Reservations *mongo.Collection
var AuditLog *mongo.Collection
var Accounts *mongo.Collection

const (
	NotificationQueue = "roomdesk:notifications"
	ActivityChannel   = "roomdesk:activity"
)

func InitDB(deployment string) error {
	var err error

	Client, err = mongo.Connect(
		Ctx,
		options.Client().ApplyURI(env.MONGO_URI),
	)
	if err != nil {
		return err
	}

	err = Client.Ping(Ctx, nil)
	if err != nil {
		log.Fatal("COULD NOT CONNECT TO MONGODB")
		return err
	}

	database := "roomdesk"
	if deployment == "test" {
		database = "roomdesk_test"
	}

	// loading collections
	Reservations = GetCollection(database, "reservations", Client)
	AuditLog = GetCollection(database, "auditlog", Client)
	Accounts = GetCollection(database, "accounts", Client)

	return nil
}

func GetCollection(database string, collectionName string, client *mongo.Client) *mongo.Collection {
	return client.Database(database).Collection(collectionName)
}

func InitCache(deployment string) error {
	var err error

	database := 0
	if deployment == "test" {
		database = 15
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     env.REDIS_ADDR,
		Password: "",
		DB:       database,
	})

	err = RDB.Ping(Ctx).Err()
	if err != nil {
		log.Fatal("COULD NOT CONNECT TO REDIS")
		return err
	}

	return nil
}

func CacheSet(key string, value string) error {
	return RDB.Set(Ctx, key, value, 0).Err()
}

func CacheGet(key string) (string, error) {
	return RDB.Get(Ctx, key).Result()
}

func CacheDel(key string) error {
	_, err := RDB.Del(Ctx, key).Result()

	return err
}

// QueuePush appends a payload to the notification outbox list.
func QueuePush(key string, payload []byte) error {
	return RDB.LPush(Ctx, key, payload).Err()
}

// PublishActivity broadcasts a payload on the live activity channel.
func PublishActivity(payload []byte) error {
	return RDB.Publish(Ctx, ActivityChannel, payload).Err()
}

// SubscribeActivity opens a subscription on the live activity channel.
func SubscribeActivity(ctx context.Context) *redis.PubSub {
	return RDB.Subscribe(ctx, ActivityChannel)
}
