package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once
var temperature = float32(config.ModelTemperature)

func GetGeminiClient(ctx context.Context, apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, apikey, modelName)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, apikey string, modelName string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}
}

func (c *llmClient) Generate(ctx context.Context, systemInstruction string, prompt string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, systemInstruction, prompt)
	if err != nil {
		if !isTransient(err) {
			log.Error("Gemini generation failed", "error", err)
			return "", err
		}
		log.Warn("Transient generation failure, retrying once", "error", err)
		time.Sleep(config.RetryBackoff)
		result, err = c.doCall(ctx, systemInstruction, prompt)
		if err != nil {
			log.Error("Gemini generation retry failed", "error", err)
			return "", err
		}
	}

	text := result.Text()
	if text == "" {
		// A response with no candidates and no transport error means
		// the safety layer swallowed the answer.
		log.Warn("Gemini returned an empty response")
		return "", fmt.Errorf("model %s: %w", c.modelName, llm.ErrContentFiltered)
	}
	return text, nil
}

func (c *llmClient) doCall(ctx context.Context, systemInstruction string, prompt string) (*genai.GenerateContentResponse, error) {
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		Temperature: &temperature,
	}
	return c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), contentConfig)
}

func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable:
			return true
		}
	}
	return false
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}
