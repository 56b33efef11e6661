package openaiLLM

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/resumeatlas/ResumeAPI/internal/analysis/llm"
	"github.com/resumeatlas/ResumeAPI/internal/config"
	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
	"github.com/resumeatlas/ResumeAPI/pkg/logger_i"
)

var once sync.Once
var sharedClient openai.Client

// Client is the alternative analysis backend. Unlike the hosted instruct
// endpoint it replays prior turns, so follow-up answers can reference
// earlier ones.
type Client struct {
	client *openai.Client
	logger *logger_i.Logger
}

func NewClient() *Client {
	once.Do(func() {
		sharedClient = openai.NewClient(option.WithAPIKey(config.OpenAIAPIKey()))
	})
	return &Client{
		client: &sharedClient,
		logger: logger_i.NewLogger("OpenAI"),
	}
}

func (c *Client) Generate(ctx context.Context, prompt string, resumeText string, history []sessionModel.ConversationTurn) (string, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	log.Debug("llm.generate.start")

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(
		"You analyze resumes. Ground every answer in this resume text:\n\n"+resumeText))

	for _, turn := range history {
		switch turn.Role {
		case sessionModel.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(prompt))

	chat, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       config.OpenAIModelName,
		Temperature: openai.Float(config.GenTemperature),
		TopP:        openai.Float(config.GenTopP),
	})
	if err != nil {
		log.Error("chat completion failed", "error", err)
		return "", fmt.Errorf("%w: %v", llm.ErrRemoteService, err)
	}

	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", llm.ErrRemoteService)
	}
	return chat.Choices[0].Message.Content, nil
}
