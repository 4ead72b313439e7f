package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/reliefgrid/reliefgrid-backend/internal/modules/allocation"
	"github.com/reliefgrid/reliefgrid-backend/internal/modules/incident"
	"github.com/reliefgrid/reliefgrid-backend/internal/modules/inventory"
	"github.com/reliefgrid/reliefgrid-backend/internal/modules/notify"
	"github.com/reliefgrid/reliefgrid-backend/internal/modules/resource"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	// ── Notification bus ─────────────────────────────────────
	var bus notify.Bus
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisBus := notify.NewRedisBus(addr)
		if err := redisBus.Ping(context.Background()); err != nil {
			log.Fatalf("redis at %s unreachable: %v", addr, err)
		}
		bus = redisBus
	} else {
		bus = notify.NewMemoryBus()
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Resource store ──────────────────────────────────────
	resourceRepo := resource.NewPostgresRepository(db)
	resourceService := resource.NewService(resourceRepo)
	resource.NewHandler(resourceService).RegisterRoutes(router)

	// ── Stock ledger & transfer engine ──────────────────────
	inventoryRepo := inventory.NewPostgresRepository(db)
	inventoryService := inventory.NewService(inventoryRepo)
	inventory.NewHandler(inventoryService).RegisterRoutes(router)

	// ── Allocation engine ───────────────────────────────────
	allocationRepo := allocation.NewPostgresRepository(db)
	allocationService := allocation.NewService(allocationRepo, allocation.DefaultCost)
	allocation.NewHandler(allocationService).RegisterRoutes(router)

	// ── Incident routing ────────────────────────────────────
	incidentRouter := incident.NewRouter()
	deps := incidentRouter.Deps(resourceRepo, bus)
	incidentRouter.Register(incident.CategoryMedical, incident.NewMedicalWorkflow(deps))
	incidentRouter.Register(incident.CategoryInfrastructure, incident.NewInfrastructureWorkflow(deps))
	incidentRouter.Register(incident.CategoryWeather, incident.NewWeatherWorkflow(deps))
	incident.NewHandler(incidentRouter).RegisterRoutes(router)

	// ── Start Server ─────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("listening on :%s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}
