package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/config"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/handlers"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/middleware"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/repository"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/services"
	programws "github.com/silverxhexhaj/nutricoach-sub001/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	programRepo := repository.NewProgramRepository(db)
	itemRepo := repository.NewItemRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)

	hub := programws.NewHub()
	go hub.Run()
	notifier := programws.NewNotifier(hub)

	programService := services.NewProgramService(db, programRepo, itemRepo)
	assignmentService := services.NewAssignmentService(db, assignmentRepo, programRepo, userRepo, notifier)
	overrideService := services.NewOverrideService(overrideRepo, assignmentRepo, programRepo, notifier)
	resolveService := services.NewResolveService(assignmentRepo, programRepo, itemRepo, overrideRepo)

	programHandler := handlers.NewProgramHandler(programService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, resolveService, hub, cfg.JWTSecret)
	overrideHandler := handlers.NewOverrideHandler(overrideService)
	clientHandler := handlers.NewClientHandler(userRepo)

	api := app.Group("/api")
	protected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	programs := protected.Group("/programs")
	programs.Post("", programHandler.CreateProgram)
	programs.Get("", programHandler.ListPrograms)
	programs.Get("/:id", programHandler.GetProgram)
	programs.Put("/:id", programHandler.UpdateProgram)
	programs.Delete("/:id", programHandler.DeleteProgram)
	programs.Put("/:id/days/:dayNumber", programHandler.SetDayLabel)

	days := protected.Group("/days")
	days.Post("/:id/items", programHandler.AddItem)

	items := protected.Group("/items")
	items.Put("/:id", programHandler.UpdateItem)
	items.Delete("/:id", programHandler.DeleteItem)

	clients := protected.Group("/clients")
	clients.Get("", clientHandler.ListClients)
	clients.Post("/:id/assignments", assignmentHandler.AssignProgram)
	clients.Get("/:id/assignments/active", assignmentHandler.GetActiveAssignment)

	assignments := protected.Group("/assignments")
	assignments.Delete("/:id", assignmentHandler.UnassignProgram)
	assignments.Get("/:id/view", assignmentHandler.ResolveView)
	assignments.Post("/:id/overrides", overrideHandler.CreateOverride)

	overrides := protected.Group("/overrides")
	overrides.Put("/:id", overrideHandler.UpdateOverride)
	overrides.Delete("/:id", overrideHandler.DeleteOverride)

	api.Use("/v1/ws", assignmentHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(assignmentHandler.HandleWebSocket))
}
