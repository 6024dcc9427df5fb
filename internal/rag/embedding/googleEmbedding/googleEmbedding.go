package googleEmbedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"google.golang.org/genai"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
	}
	if c != nil {
		embeddingClient = &client{
			genAi: c,
			model: modelName,
		}
		logger.Info("Google Embedding client created", "model", modelName)
		go closeClient(ctx, embeddingClient)
	}
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	callCtx, cancel := context.WithTimeout(ctx, config.EmbeddingTimeout)
	defer cancel()

	result, err := c.doCall(callCtx, genai.Text(query), "RETRIEVAL_QUERY")
	if err != nil {
		if !isTransient(err) {
			log.Error("Error getting embedding from Google", "error", err)
			return nil, err
		}
		log.Warn("Transient embedding failure, retrying once", "error", err)
		time.Sleep(config.RetryBackoff)
		result, err = c.doCall(callCtx, genai.Text(query), "RETRIEVAL_QUERY")
		if err != nil {
			log.Error("Embedding retry failed", "error", err)
			return nil, err
		}
	}
	return firstEmbedding(result)
}

// firstEmbedding surfaces an empty response as an error instead of an
// index panic.
func firstEmbedding(res *genai.EmbedContentResponse) ([]float32, error) {
	if res == nil || len(res.Embeddings) == 0 {
		return nil, errors.New("embedding response contained no vectors")
	}
	return res.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "batch size", len(chunks))

	callCtx, cancel := context.WithTimeout(ctx, config.EmbeddingTimeout)
	defer cancel()

	res, err := c.doCall(callCtx, getContent(chunks), "RETRIEVAL_DOCUMENT")
	if err != nil {
		if !isTransient(err) {
			log.Error("Error getting batch embeddings from Google", "error", err)
			return nil, err
		}
		log.Warn("Transient batch embedding failure, retrying once", "error", err)
		time.Sleep(config.RetryBackoff)
		res, err = c.doCall(callCtx, getContent(chunks), "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Error("Batch embedding retry failed", "error", err)
			return nil, err
		}
	}

	embeddingResults := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		embeddingResults = append(embeddingResults, r.Values)
	}
	return embeddingResults, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: taskType})
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}
