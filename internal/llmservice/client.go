package llmservice

import (
	"context"
	"strings"

	"novelcast/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// call llm
func GenerateContent(ctx context.Context, llmConfig *config.LLMConfig, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	log.Debug().Str("model", llmConfig.Model).Msg("Generating content")

	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	}
	if llmConfig.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return llm.GenerateContent(ctx, messages, options...)
}
