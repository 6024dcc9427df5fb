package openaiLLM

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/customHttpClient"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	api       openai.Client
	modelName string
}

var logger *logger_i.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIClient(ctx context.Context, apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		openaiClient = &llmClient{
			api: openai.NewClient(
				option.WithAPIKey(apikey),
				option.WithHTTPClient(customHttpClient.PooledClient()),
			),
			modelName: modelName,
		}
		logger.Info("OpenAI client created", "model", modelName)
	})

	if openaiClient == nil {
		return nil
	}
	return openaiClient
}

func (c *llmClient) Generate(ctx context.Context, systemInstruction string, prompt string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, systemInstruction, prompt)
	if err != nil {
		if !isTransient(err) {
			log.Error("OpenAI generation failed", "error", err)
			return "", err
		}
		log.Warn("Transient generation failure, retrying once", "error", err)
		time.Sleep(config.RetryBackoff)
		result, err = c.doCall(ctx, systemInstruction, prompt)
		if err != nil {
			log.Error("OpenAI generation retry failed", "error", err)
			return "", err
		}
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", c.modelName)
	}
	choice := result.Choices[0]
	if choice.FinishReason == "content_filter" {
		log.Warn("OpenAI blocked the completion")
		return "", fmt.Errorf("model %s: %w", c.modelName, llm.ErrContentFiltered)
	}
	return choice.Message.Content, nil
}

func (c *llmClient) doCall(ctx context.Context, systemInstruction string, prompt string) (*openai.ChatCompletion, error) {
	return c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})
}

func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}
