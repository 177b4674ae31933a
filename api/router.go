// api/router.go
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Annany2002/cvm-baseprep/api/handlers"
	"github.com/Annany2002/cvm-baseprep/api/middleware"
	"github.com/Annany2002/cvm-baseprep/api/models"
	"github.com/Annany2002/cvm-baseprep/config"
	"github.com/Annany2002/cvm-baseprep/internal/catalog"
	"github.com/Annany2002/cvm-baseprep/internal/generation"
	"github.com/Annany2002/cvm-baseprep/internal/logger"
	"github.com/Annany2002/cvm-baseprep/internal/mediation"
	"github.com/Annany2002/cvm-baseprep/internal/metrics"
	"github.com/Annany2002/cvm-baseprep/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

// SetupRouter initializes the Gin router and sets up all routes. sched drives
// the generation simulator; pass generation.RealScheduler{} outside tests.
func SetupRouter(metaDB *sql.DB, cfg *config.Config, sched generation.Scheduler) *gin.Engine {
	if err := models.RegisterValidators(); err != nil {
		customLog.Fatalf("Failed to register request validators: %v", err)
	}

	router := gin.Default() // Includes Logger and Recovery

	m := metrics.New()
	router.Use(m.GinMiddleware())
	router.Use(cors.New(corsConfig(cfg)))

	ratelimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	router.Use(middleware.RateLimitMiddleware(ratelimiter))
	// Runs after Logger/Recovery and wraps every handler below.
	router.Use(middleware.ErrorHandler())

	cat := catalog.Default()
	sessions := storage.NewSessionStore()
	history := storage.NewHistoryRepo(metaDB)
	sim := generation.NewSimulator(sched, generation.Options{
		Stagger:     cfg.GenerationStagger,
		Tick:        cfg.GenerationTick,
		MinDuration: cfg.GenerationMinTime,
		MaxDuration: cfg.GenerationMaxTime,
		MinRows:     generation.DefaultOptions().MinRows,
		MaxRows:     generation.DefaultOptions().MaxRows,
	}, nil)

	catalogHandler := handlers.NewCatalogHandler(cat)
	sessionHandler := handlers.NewSessionHandler(cat, sessions, m, cfg)
	generationHandler := handlers.NewGenerationHandler(cat, sessions, sim, history, m)
	dashboardHandler := handlers.NewDashboardHandler(mediation.NewDashboardClient(cfg.DashboardAPIURL, nil))
	mediationHandler := handlers.NewMediationHandler(mediation.NewClient(cfg.MediationAPIURL))

	// --- Public Routes ---
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// --- Protected Routes ---
	apiRoutes := router.Group("/api/v1")
	apiRoutes.Use(middleware.AuthMiddleware(cfg))
	{
		apiRoutes.GET("/catalog", catalogHandler.ListCatalog)

		apiRoutes.POST("/sessions", sessionHandler.CreateSession)
		apiRoutes.GET("/sessions/:session_id", sessionHandler.GetSession)
		apiRoutes.DELETE("/sessions/:session_id", sessionHandler.DeleteSession)
		apiRoutes.PUT("/sessions/:session_id/postfix", sessionHandler.SetPostfix)

		apiRoutes.POST("/sessions/:session_id/tables", sessionHandler.AddTable)
		apiRoutes.PUT("/sessions/:session_id/tables/:table_id/fields", sessionHandler.UpdateFields)
		apiRoutes.DELETE("/sessions/:session_id/tables/:table_id", sessionHandler.RemoveTable)

		apiRoutes.PUT("/sessions/:session_id/base", sessionHandler.SetBaseTable)
		apiRoutes.PUT("/sessions/:session_id/result-table", sessionHandler.SetResultTable)
		apiRoutes.POST("/sessions/:session_id/joins", sessionHandler.AddJoin)
		apiRoutes.PATCH("/sessions/:session_id/joins/:join_id", sessionHandler.UpdateJoin)
		apiRoutes.DELETE("/sessions/:session_id/joins/:join_id", sessionHandler.RemoveJoin)
		apiRoutes.POST("/sessions/:session_id/sql", sessionHandler.GenerateSQL)

		apiRoutes.POST("/sessions/:session_id/generate", generationHandler.StartGeneration)
		apiRoutes.GET("/sessions/:session_id/generation", generationHandler.GetGeneration)
		apiRoutes.GET("/generated-tables", generationHandler.ListGeneratedTables)
		apiRoutes.GET("/generated-tables/:table_name", generationHandler.GetGeneratedTable)

		apiRoutes.GET("/dashboard/cards", dashboardHandler.GetCards)

		med := apiRoutes.Group("/mediation")
		{
			med.GET("/node-families", mediationHandler.ListNodeFamilies)
			med.POST("/node-families", mediationHandler.CreateNodeFamily)
			med.GET("/node-families/:node_id", mediationHandler.GetNodeFamily)
			med.PUT("/node-families/:node_id", mediationHandler.UpdateNodeFamily)
			med.DELETE("/node-families/:node_id", mediationHandler.DeleteNodeFamily)
			med.GET("/node-families/:node_id/versions", mediationHandler.ListNodeVersions)
			med.POST("/node-families/:node_id/versions", mediationHandler.CreateNodeVersion)
			med.GET("/node-families/:node_id/versions/:version", mediationHandler.GetNodeVersion)
			med.POST("/node-families/:node_id/versions/:version/deploy", mediationHandler.DeployNodeVersion)
			med.POST("/node-families/:node_id/versions/:version/undeploy", mediationHandler.UndeployNodeVersion)
			med.POST("/node-families/:node_id/versions/:version/parameters", mediationHandler.AddNodeParameters)

			med.GET("/subnodes", mediationHandler.ListSubnodes)
			med.POST("/subnodes", mediationHandler.CreateSubnode)
			med.POST("/subnodes/import", mediationHandler.ImportSubnode)
			med.GET("/subnodes/:subnode_id", mediationHandler.GetSubnode)
			med.PATCH("/subnodes/:subnode_id", mediationHandler.UpdateSubnode)
			med.DELETE("/subnodes/:subnode_id", mediationHandler.DeleteSubnode)
			med.PUT("/subnodes/:subnode_id/parameter-values", mediationHandler.UpdateSubnodeParameterValues)
			med.PUT("/subnodes/:subnode_id/edit", mediationHandler.EditSubnodeWithParameters)
			med.GET("/subnodes/:subnode_id/export", mediationHandler.ExportSubnode)
			med.POST("/subnodes/:subnode_id/clone", mediationHandler.CloneSubnode)
			med.POST("/subnodes/:subnode_id/versions", mediationHandler.CreateEditableSubnodeVersion)
			med.DELETE("/subnodes/:subnode_id/versions", mediationHandler.DeleteAllSubnodeVersions)
			med.DELETE("/subnodes/:subnode_id/versions/:version", mediationHandler.DeleteSubnodeVersion)
			med.POST("/subnodes/:subnode_id/versions/:version/activate", mediationHandler.ActivateSubnodeVersion)
			med.POST("/subnodes/:subnode_id/versions/:version/undeploy", mediationHandler.UndeploySubnodeVersion)

			med.GET("/parameters", mediationHandler.ListParameters)
			med.POST("/parameters", mediationHandler.CreateParameter)
			med.GET("/parameters/:parameter_id", mediationHandler.GetParameter)
			med.PATCH("/parameters/:parameter_id", mediationHandler.UpdateParameter)
			med.DELETE("/parameters/:parameter_id", mediationHandler.DeleteParameter)

			med.GET("/flows", mediationHandler.ListFlows)
			med.GET("/flows/:flow_id", mediationHandler.GetFlow)
			med.PUT("/flows/:flow_id", mediationHandler.UpdateFlow)
			med.POST("/flows/:flow_id/:action", mediationHandler.FlowAction)
			med.PATCH("/flow-nodes/:flow_node_id", mediationHandler.UpdateFlowNode)
		}
	}

	return router
}

// corsConfig allows the dashboard origins; with none configured any origin
// may call the API without credentials.
func corsConfig(cfg *config.Config) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = cfg.CORSAllowedOrigins
	cc.AllowCredentials = true
	return cc
}
