// @title           DocQA API
// @version         1.0
// @description     Document question answering over an indexed corpus, with session memory and async ingestion.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/store"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	jobmodel "github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/akolanti/DocQA/internal/handlers"
	"github.com/akolanti/DocQA/internal/job"
	mcpserver "github.com/akolanti/DocQA/internal/mcp"
	"github.com/akolanti/DocQA/internal/rag"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocQA/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocQA/internal/rag/index"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/internal/rag/llm/gemini"
	"github.com/akolanti/DocQA/internal/rag/llm/openaiLLM"
	"github.com/akolanti/DocQA/internal/rag/retrieve"
	"github.com/akolanti/DocQA/internal/rag/rewrite"
	"github.com/akolanti/DocQA/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocQA/internal/server"
	"github.com/akolanti/DocQA/internal/worker"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//stores, Redis first, in-memory when Redis is offline
	var jobStore jobmodel.JobStore
	if redisJobs := store.GetRedisJobStore(serviceContext); redisJobs != nil {
		jobStore = redisJobs
	} else {
		logger.Error("Redis job store is offline, falling back to in-memory")
		jobStore = store.InitInMemoryJobStore()
	}

	var sessions sessionModel.SessionStore
	if redisSessions := store.GetRedisSessionStore(serviceContext); redisSessions != nil {
		sessions = redisSessions
	} else {
		logger.Error("Redis session store is offline, falling back to in-memory")
		sessions = store.InitSessionStore()
	}

	var registry commonModels.DocumentRegistry
	if redisDocs := store.GetRedisDocumentStore(serviceContext); redisDocs != nil {
		registry = redisDocs
	} else {
		logger.Error("Redis document store is offline, falling back to in-memory")
		registry = store.InitDocumentStore()
	}

	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
	})

	vectorDB := qdrantDB.GetQuadrantClient(serviceContext)
	embeddingService := getEmbedder(serviceContext)
	llmProvider := getLLMProvider(serviceContext)

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	if err := vectorDB.EnsureCollection(serviceContext, config.VectorCollectionName); err != nil {
		logger.Error("Could not ensure vector collection. Shutting down.", "error", err)
		return
	}

	indexer := index.NewIndexer(embeddingService, vectorDB, registry)
	retriever := retrieve.NewRetriever(embeddingService, vectorDB, registry)
	rewriter := rewrite.NewRewriter(llmProvider)
	ragService := rag.NewService(retriever, rewriter, llmProvider, indexer, sessions)

	handlers.InitJobHandler(service)
	handlers.InitRequestHandlers(ragService, sessions)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//reap idle sessions in the background
	store.StartSessionJanitor(serviceContext, sessions)

	if config.MCPEnabled {
		mcpSrv := mcpserver.NewServer(ragService, retriever, sessions)
		go func() {
			if err := mcpSrv.RunHTTP(serviceContext, config.MCPListenAddr); err != nil {
				logger.Error("MCP server stopped", "error", err)
			}
		}()
	}

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func getLLMProvider(ctx context.Context) llm.Provider {
	switch config.LLMProviderName {
	case "openai":
		return openaiLLM.GetOpenAIClient(ctx, os.Getenv("OPENAI_API_KEY"), config.OpenAIModelName)
	default:
		return gemini.GetGeminiClient(ctx, geminiAPIKey(), config.GeminiModelName)
	}
}

func getEmbedder(ctx context.Context) embedding.Embedder {
	switch config.EmbeddingProviderName {
	case "openai":
		return openaiEmbedding.GetOpenAIEmbeddingClient(ctx, config.OpenAIEmbeddingModel, os.Getenv("OPENAI_API_KEY"))
	default:
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, geminiAPIKey())
	}
}

func geminiAPIKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return config.GoogleEmbeddingAPIKey
}
