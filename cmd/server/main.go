package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/genai"

	appconfig "archivechat/config"
	"archivechat/controller"
	"archivechat/pkg/log"
	"archivechat/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables.")
	}

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config", err)
	}
	log.Init(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	ctx := context.Background()

	index, err := services.NewChromaIndex(ctx, cfg.Chroma.URL, cfg.Chroma.Collection, time.Duration(cfg.Chroma.TimeoutSecs)*time.Second)
	if err != nil {
		log.Fatal("failed to connect to chroma", err)
	}

	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal("failed to create Gemini client; make sure GEMINI_API_KEY is set", err)
	}

	embedder := services.NewEmbedder(cfg.Embedding)
	expansion := services.NewExpansionService(
		services.NewGeminiExpander(geminiClient, cfg.Expansion.Model, cfg.Expansion.Count),
		cfg.Expansion.Count,
		time.Duration(cfg.Expansion.TimeoutSecs)*time.Second,
	)
	retriever := services.NewRetriever(embedder, index, cfg.Retrieval.TopK)
	assembler := services.NewEvidenceAssembler(cfg.Titles, cfg.Retrieval.ContextChunks)
	answerer := services.NewGeminiAnswerer(geminiClient, cfg.Answer.Model)

	chatService := services.NewChatService(
		expansion, retriever, assembler, answerer, index,
		cfg.Answer.Persona,
		time.Duration(cfg.Answer.TimeoutSecs)*time.Second,
	)
	chatController := controller.NewChatController(chatService)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "archivechat"})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/query", chatController.Query)
		apiV1.GET("/stats", chatController.Stats)
	}

	log.Infof("archivechat server starting on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("failed to start server", err)
	}
}
