package routes

import (
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/config"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/controllers"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/middlewares"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	LLM    services.TextGenerator // nil disables model calls; features use fallbacks
	Cache  services.AnswerCache
	Hub    *services.RealtimeHub
	Log    *zap.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	log := d.Log
	if d.Hub == nil {
		d.Hub = services.NewRealtimeHub(log)
	}
	if d.Cache == nil {
		d.Cache = services.NewLRUAnswerCache(cfg.Cache.Size)
	}

	users := services.NewUserService(d.DB)
	alerts := services.NewAlertBus(d.DB, d.Hub, log)
	mood := services.NewMoodService(d.DB, users, log)
	cgm := services.NewCGMService(d.DB, users, alerts, log)
	food := services.NewFoodService(d.DB, users, d.LLM, log)
	plans := services.NewMealPlanService(d.DB, users, d.LLM, log)
	interrupt := services.NewInterruptService(d.DB, d.LLM, cfg.LLM.AssistantModel, d.Cache, log)
	summary := services.NewSummaryService(users, mood, cgm, food, plans)

	greetC := controllers.NewGreetingController(services.NewGreetingService(users), cfg.Session.Secret, cfg.Session.TTL, log)
	moodC := controllers.NewMoodController(mood, log)
	cgmC := controllers.NewCGMController(cgm, log)
	foodC := controllers.NewFoodController(food, log)
	planC := controllers.NewMealPlanController(plans, log)
	askC := controllers.NewInterruptController(interrupt, log)
	summaryC := controllers.NewSummaryController(summary, log)
	alertC := controllers.NewAlertController(alerts, log)
	rtC := controllers.NewRealtimeController(d.Hub, cfg.CORSOrigins, log)

	r := gin.New()
	r.Use(middlewares.RequestLogger(log), middlewares.Recovery(log), middlewares.CORS(cfg.CORSOrigins))
	r.NoRoute(controllers.NotFound)

	r.GET("/health", controllers.Health)

	limited := middlewares.NewRateLimiter(cfg.Limits.RPS, cfg.Limits.Burst).Middleware()

	api := r.Group("/api")
	{
		api.POST("/greet", greetC.Greet)
		api.POST("/mood", moodC.Handle)
		api.POST("/cgm", cgmC.Handle)
		api.GET("/available-moods", moodC.AvailableMoods)
		api.GET("/users/:id/summary", summaryC.UserSummary)
		api.GET("/users/:id/alerts", alertC.List)

		// model-backed
		api.POST("/food", limited, foodC.Handle)
		api.POST("/meal-plan", limited, planC.Handle)
		api.POST("/interrupt", limited, askC.Ask)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.SessionAuth(cfg.Session.Secret))
	{
		ws.GET("/alerts", rtC.AlertsWS)
	}

	return r
}
