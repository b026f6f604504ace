package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"dietplanner/internal/auth"
	"dietplanner/internal/config"
	"dietplanner/internal/database"
	"dietplanner/internal/handlers"
	"dietplanner/internal/session"
	"dietplanner/internal/store"
	"dietplanner/internal/store/memstore"
	"dietplanner/internal/store/mongostore"
)

func main() {
	config.Load()

	if config.AppEnv.JWTSecret == "" {
		log.Fatal("ENV JWT_SECRET is required")
	}

	var st store.Store
	switch config.AppEnv.StoreBackend {
	case config.BackendMemory:
		log.Println("using in-memory store; data is lost on restart")
		st = memstore.New()
	case config.BackendMongo:
		if config.AppEnv.MongoURI == "" {
			log.Fatal("ENV MONGO_URI is required")
		}
		client, err := database.Connect(config.AppEnv.MongoURI)
		if err != nil {
			log.Fatal(err)
		}

		db := client.Database(config.AppEnv.DBName)
		log.Println("MongoDB connected to:", db.Name())

		if err := database.EnsureDocumentIndexes(db); err != nil {
			log.Printf("document index warning: %v", err)
		}
		st = mongostore.New(db.Collection(database.DocumentsCollection))
	default:
		log.Fatalf("unknown STORE_BACKEND %q", config.AppEnv.StoreBackend)
	}

	r := gin.Default()
	handlers.SetupRoutes(r, handlers.RouteConfig{
		Store:          st,
		Accounts:       auth.NewAccounts(st),
		Sessions:       session.NewRegistry(st, session.Options{FanOutLimit: config.AppEnv.FanOutLimit}),
		JWTSecret:      config.AppEnv.JWTSecret,
		AccessTokenTTL: config.AppEnv.AccessTokenTTL,
		RequestTimeout: config.AppEnv.RequestTimeout,
	})

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
