package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qualikit/qualikit/backend/go-services/handlers"
	"github.com/qualikit/qualikit/backend/go-services/internal/areas"
	"github.com/qualikit/qualikit/backend/go-services/internal/database"
	docrepo "github.com/qualikit/qualikit/backend/go-services/internal/document/repository"
	"github.com/qualikit/qualikit/backend/go-services/internal/governance"
	tktrepo "github.com/qualikit/qualikit/backend/go-services/internal/ticket/repository"
	"github.com/qualikit/qualikit/backend/go-services/internal/users"
)

// Standalone governance service without the auth surface. Useful for local
// development and integration suites: no Keycloak, Redis or MinIO required.
func main() {
	port := os.Getenv("GOVERNANCE_SERVICE_PORT")
	if port == "" {
		port = "5020"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	var docs governance.DocumentStore
	var tickets governance.TicketStore
	var areaRepo areas.AreaRepository
	var userSvc *users.Service

	// Prefer Mongo-backed stores when MONGODB_URI is provided.
	if mongoURI := os.Getenv("MONGODB_URI"); mongoURI != "" {
		client, err := database.ConnectMongo(context.Background(), mongoURI, 10*time.Second)
		if err != nil {
			log.Printf("warning: cannot connect to MongoDB (%v) — using memory-backed repos", err)
		} else {
			db := client.Database(os.Getenv("MONGODB_DATABASE"))
			docs = docrepo.NewMongoRepo(db.Collection("documents"))
			tickets = tktrepo.NewMongoRepo(db.Collection("tickets"))
			areaRepo = areas.NewMongoAreaRepository(db.Collection("areas"))
			userSvc = users.NewService(users.NewMongoUserRepository(db.Collection("users")))
		}
	}
	if docs == nil {
		docs = docrepo.NewMemoryRepo()
		tickets = tktrepo.NewMemoryRepo()
		areaRepo = areas.NewMemoryAreaRepository()
		userSvc = users.NewService(users.NewMemoryUserRepository())
	}

	areaSvc := areas.NewService(areaRepo)
	govSvc := governance.NewService(docs, tickets, areaSvc, userSvc.IsDocumentAdmin, nil)

	api := r.Group("/api/v1")
	handlers.NewDocumentHandler(govSvc).Register(api)
	handlers.NewTicketHandler(govSvc, nil).Register(api)
	handlers.NewAreaHandler(areaSvc).Register(api)

	log.Printf("governance service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
