package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	NoAuthBypass = true //set false and provide AuthToken for bearer auth
	AuthToken    = ""

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//server listening port
	ServerListenAddr = ":3000"

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//chunking
	ChunkSize        = 1000 //characters
	ChunkOverlap     = 200  //prior text duplicated at chunk boundaries
	BoundaryLookback = 120  //how far back we look for a sentence/paragraph break

	//retrieval
	RetrieveTopK        = 5
	HybridRetrieval     = false //vector-only by default; lexical merge when enabled
	HybridAlpha         = 0.7   //weight of the vector score in hybrid mode
	CandidateMultiplier = 3     //over-fetch factor before merging/filtering
	MinRelevanceScore   = 0.15  //candidates below this are dropped

	//conversation memory
	RewriteHistoryTurns = 6 //last 3 exchanges feed the query rewriter
	PromptHistoryTurns  = 6
	SessionMaxIdle      = 24 * time.Hour
	JanitorInterval     = 1 * time.Hour

	//every upstream call is bounded
	EmbeddingTimeout  = 30 * time.Second
	RewriteTimeout    = 10 * time.Second
	GenerationTimeout = 45 * time.Second
	RetryBackoff      = 2 * time.Second

	//vectorDB
	EmbeddingOutputDimensionality int32 = 1536
	VectorCollectionName                = "docqa-chunks"
	QdrantConnectionTimeout             = 30 * time.Second
	QdrantHost                          = ""
	QdrantPort                          = 6333 //http
	QdrantGrpcPort                      = 6334
	QdrantUseTLS                        = false
	QdrantPoolSize                      = 1
	QdrantKeepAliveTimeout              = 30 * time.Second

	//providers: "gemini" or "openai"
	LLMProviderName       = "gemini"
	EmbeddingProviderName = "gemini"

	GeminiModelName       = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel  = "gemini-embedding-001"
	GoogleEmbeddingAPIKey = ""

	OpenAIModelName      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	ModelTemperature float32 = 0.2
	SystemInstruction        = "You are a document question answering assistant. Answer only from the provided context passages. If the context does not contain the answer, reply that it was not found in the documents. Never invent sources."

	//ingestion job pipeline
	BufferLimit                     = 100
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	//IdleWorkerTimeout = 1 * time.Second //fo tests
	IngestBatchSize                 = 100

	//outbound http pooling
	MaxIdleConns        = 100
	MaxIdleConnsPerHost = 10
	IdleConnTimeout     = 90 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobStore      = 0
	RedisSessionStore  = 1
	RedisDocumentStore = 2

	RedisJobStoreTTL = 24 * time.Hour

	//mcp surface
	MCPEnabled    = false
	MCPListenAddr = ":3001"
)
