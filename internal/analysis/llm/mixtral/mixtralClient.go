package mixtral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/resumeatlas/ResumeAPI/internal/analysis/llm"
	"github.com/resumeatlas/ResumeAPI/internal/config"
	"github.com/resumeatlas/ResumeAPI/internal/customHttpClient"
	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
	"github.com/resumeatlas/ResumeAPI/pkg/logger_i"
)

// Client calls a hosted Mixtral instruct endpoint over HTTP. The model is
// stateless: every call carries the full resume context in the prompt, so
// prior turns are not replayed.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *logger_i.Logger
}

type generationRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters generationParameters `json:"parameters"`
}

type generationParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
}

// GeneratedText is a pointer so an absent field is distinguishable from
// an empty answer.
type generationResponse struct {
	GeneratedText *string `json:"generated_text"`
}

func NewClient() *Client {
	return &Client{
		endpoint:   config.InferenceURL,
		apiKey:     config.InferenceAPIKey(),
		httpClient: customHttpClient.GetPooledClient(),
		logger:     logger_i.NewLogger("Mixtral"),
	}
}

// NewTestClient points the client at a local endpoint. Test use only.
func NewTestClient(endpoint string, httpClient *http.Client) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     "test-key",
		httpClient: httpClient,
		logger:     logger_i.NewLogger("Mixtral test"),
	}
}

func (c *Client) Generate(ctx context.Context, prompt string, resumeText string, history []sessionModel.ConversationTurn) (string, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	log.Debug("llm.generate.start")

	body, err := json.Marshal(generationRequest{
		Inputs: buildInstructPrompt(prompt, resumeText),
		Parameters: generationParameters{
			MaxNewTokens:   config.GenMaxNewTokens,
			Temperature:    config.GenTemperature,
			TopP:           config.GenTopP,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrRemoteService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrRemoteService, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("inference call failed", "error", err)
		return "", fmt.Errorf("%w: %v", llm.ErrRemoteService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrRemoteService, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("inference endpoint returned error status", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", llm.ErrRemoteService, resp.StatusCode)
	}

	return decodeGeneratedText(raw)
}

// buildInstructPrompt wraps the prompt and resume context in the Mixtral
// instruct template.
func buildInstructPrompt(prompt string, resumeText string) string {
	return "<s>[INST]" + prompt + "\n\nContext from resume:\n" + resumeText + "[/INST]</s>"
}

// decodeGeneratedText accepts both response shapes the endpoint produces:
// a one-element array or a bare object. A 2xx body without the
// generated_text field is still a remote service failure.
func decodeGeneratedText(raw []byte) (string, error) {
	var asArray []generationResponse
	if err := json.Unmarshal(raw, &asArray); err == nil {
		if len(asArray) == 0 || asArray[0].GeneratedText == nil {
			return "", fmt.Errorf("%w: response lacks generated_text", llm.ErrRemoteService)
		}
		return *asArray[0].GeneratedText, nil
	}

	var asObject generationResponse
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return "", fmt.Errorf("%w: undecodable response: %v", llm.ErrRemoteService, err)
	}
	if asObject.GeneratedText == nil {
		return "", fmt.Errorf("%w: response lacks generated_text", llm.ErrRemoteService)
	}
	return *asObject.GeneratedText, nil
}
