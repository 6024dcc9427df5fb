package openaiEmbedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/customHttpClient"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	api   openai.Client
	model string
}

func GetOpenAIEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		embeddingClient = &client{
			api: openai.NewClient(
				option.WithAPIKey(apikey),
				option.WithHTTPClient(customHttpClient.PooledClient()),
			),
			model: modelName,
		}
		logger.Info("OpenAI embedding client created", "model", modelName)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return firstVector(vectors)
}

// firstVector surfaces an empty response as an error instead of an
// index panic.
func firstVector(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, errors.New("embedding response contained no vectors")
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "batch size", len(chunks))

	callCtx, cancel := context.WithTimeout(ctx, config.EmbeddingTimeout)
	defer cancel()

	res, err := c.doCall(callCtx, chunks)
	if err != nil {
		if !isTransient(err) {
			log.Error("Error getting embeddings from OpenAI", "error", err)
			return nil, err
		}
		log.Warn("Transient embedding failure, retrying once", "error", err)
		time.Sleep(config.RetryBackoff)
		res, err = c.doCall(callCtx, chunks)
		if err != nil {
			log.Error("Embedding retry failed", "error", err)
			return nil, err
		}
	}

	return vectorsByIndex(res), nil
}

func vectorsByIndex(res *openai.CreateEmbeddingResponse) [][]float32 {
	vectors := make([][]float32, len(res.Data))
	for _, d := range res.Data {
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors[d.Index] = vec
	}
	return vectors
}

func (c *client) doCall(ctx context.Context, chunks []string) (*openai.CreateEmbeddingResponse, error) {
	return c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: chunks,
		},
		Dimensions: openai.Int(int64(config.EmbeddingOutputDimensionality)),
	})
}
