package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/flokiorg/appinion/apperrors"
	"github.com/flokiorg/appinion/constants"
	"github.com/flokiorg/appinion/logger"
	"github.com/flokiorg/appinion/metrics"
)

const op = "summarizer"

const systemPrompt = "You are a helpful assistant that analyzes app store reviews and provides clear, objective summaries."

const promptTemplate = `Analyze the following customer reviews for the app "%s" and provide a comprehensive summary in 3-4 paragraphs. Focus on:
1. Overall user sentiment and satisfaction
2. Most commonly mentioned positive features
3. Main complaints and issues users face
4. Any trends or patterns in the feedback

Reviews:
%s

Please provide a balanced, objective summary that would help someone understand what users think about this app.`

type Summarizer interface {
	Summarize(ctx context.Context, reviews []string, appName string) (string, error)
}

// Settings is the subset of the app config the summarizer reads on every
// call, so a credential added to the config file is picked up without a
// restart.
type Settings interface {
	GetOpenAIAPIKey() string
	GetOpenAIModel() string
	GetOpenAIBaseURL() string
}

type summarizerService struct {
	settings   Settings
	httpClient *http.Client
}

func NewSummarizerService(settings Settings, httpClient *http.Client) *summarizerService {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &summarizerService{
		settings:   settings,
		httpClient: httpClient,
	}
}

func (svc *summarizerService) Summarize(ctx context.Context, reviews []string, appName string) (string, error) {
	apiKey := svc.settings.GetOpenAIAPIKey()
	if apiKey == "" {
		return "", apperrors.Configuration(op, "OpenAI API key required")
	}

	if len(reviews) == 0 {
		return constants.NO_REVIEWS_SUMMARY, nil
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = svc.settings.GetOpenAIBaseURL()
	clientConfig.HTTPClient = svc.httpClient
	client := openai.NewClientWithConfig(clientConfig)

	request := BuildRequest(svc.settings.GetOpenAIModel(), reviews, appName)

	start := time.Now()
	response, err := client.CreateChatCompletion(ctx, request)
	metrics.RecordRemoteCall(op, err, time.Since(start))
	if err != nil {
		logger.Logger.Error().Err(err).Str("app_name", appName).Str("model", request.Model).Msg("Chat completion failed")
		return "", mapError(err)
	}

	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		logger.Logger.Error().Str("app_name", appName).Msg("Chat completion returned no content")
		return "", apperrors.EmptyCompletion(op, "No content returned from OpenAI")
	}

	logger.Logger.Info().
		Str("app_name", appName).
		Int("reviews", len(reviews)).
		Int("total_tokens", response.Usage.TotalTokens).
		Msg("Generated review summary")
	return response.Choices[0].Message.Content, nil
}

func BuildRequest(model string, reviews []string, appName string) openai.ChatCompletionRequest {
	if model == "" {
		model = constants.SUMMARY_MODEL
	}
	return openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, appName, strings.Join(reviews, "\n\n"))},
		},
		MaxTokens:   constants.SUMMARY_MAX_TOKENS,
		Temperature: constants.SUMMARY_TEMPERATURE,
	}
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &apperrors.Error{Op: op, Kind: apperrors.KindRemoteStatus, StatusCode: apiErr.HTTPStatusCode, Message: "OpenAI API request failed", Err: err}
	}
	var requestErr *openai.RequestError
	if errors.As(err, &requestErr) {
		return &apperrors.Error{Op: op, Kind: apperrors.KindRemoteStatus, StatusCode: requestErr.HTTPStatusCode, Message: "OpenAI API request failed", Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return apperrors.Network(op, urlErr.Err)
	}
	return apperrors.Decode(op, err)
}
