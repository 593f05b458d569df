package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"leavebot/internal/ai"
	appsvc "leavebot/internal/app"
	"leavebot/internal/bootstrap"
	"leavebot/internal/cache"
	"leavebot/internal/hrapi"
	"leavebot/internal/search"
	"leavebot/internal/session"
	"leavebot/internal/tools"
	"leavebot/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	llmClient := ai.NewOpenAICompatibleClient()
	fetchCache := cache.NewFetchCache(app.Redis, time.Duration(app.Config.Redis.FetchTTLSeconds)*time.Second)
	hrClient := hrapi.NewClient(hrapi.Config{
		EmployeeEndpoint:     app.Config.HR.EmployeeEndpoint,
		LeaveTypeEndpoint:    app.Config.HR.LeaveTypeEndpoint,
		LeaveHistoryEndpoint: app.Config.HR.LeaveHistoryEndpoint,
		LeaveSummaryEndpoint: app.Config.HR.LeaveSummaryEndpoint,
		BearerToken:          app.Config.HR.BearerToken,
		MaxRetries:           app.Config.HR.MaxRetries,
	}, fetchCache)

	searchEngine := search.NewEngine(app.Corpus, search.ClientEmbedder{
		Client: llmClient,
		Config: ai.EmbeddingConfig{
			BaseURL: app.Config.LLM.BaseURL,
			APIKey:  app.Config.LLM.APIKey,
			Model:   app.Config.LLM.EmbeddingModel,
		},
	})

	chatService := appsvc.NewChatService(appsvc.Config{
		Store:             session.NewStore(),
		HR:                hrClient,
		Model:             llmClient,
		Router:            tools.NewRegistry(searchEngine),
		Searcher:          searchEngine,
		FallbackEnabled:   app.Config.Search.FallbackEnabled,
		FallbackThreshold: float32(app.Config.Search.FallbackThreshold),
		LLM: ai.ChatConfig{
			BaseURL:   app.Config.LLM.BaseURL,
			APIKey:    app.Config.LLM.APIKey,
			Model:     app.Config.LLM.Model,
			MaxTokens: app.Config.LLM.MaxTokens,
		},
		HistoryWindow:  app.Config.Chat.HistoryWindow,
		CompanyGroupID: app.Config.Chat.CompanyGroupID,
	})
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")
	chatGroup := v1.Group("/chat")
	chatGroup.POST("/sessions", chatHandler.CreateSession)
	chatGroup.DELETE("/sessions/:id", chatHandler.EndSession)
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.POST("/messages/stream", chatHandler.StreamMessage)
	chatGroup.GET("/history", chatHandler.GetHistory)

	return router
}
