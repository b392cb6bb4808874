// Package advisor answers natural-language financial questions and builds
// investment plans, grounding the remote model in live market snapshots and
// degrading to deterministic canned answers when the model is unreachable.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"finnow/internal/marketdata"
	"finnow/internal/models"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the OpenAI-compatible HuggingFace router endpoint.
const DefaultBaseURL = "https://router.huggingface.co/v1"

// DefaultModel is the chat model used for all generations.
const DefaultModel = "meta-llama/Llama-3.1-8B-Instruct"

// historyWindow bounds how many past turns are forwarded to the model.
const historyWindow = 4

// Advisor is the AI response synthesizer. Every public method is
// non-throwing: remote failures degrade to canned content.
type Advisor struct {
	client  *openai.Client
	model   string
	enabled bool
	market  *marketdata.Service
	profile Profile
	log     zerolog.Logger
}

// Config configures an Advisor.
type Config struct {
	APIKey  string // empty disables the remote model entirely
	BaseURL string // defaults to the HuggingFace router
	Model   string // defaults to DefaultModel
	Market  *marketdata.Service
	Log     zerolog.Logger
}

// New creates an Advisor. With an empty API key the remote model is never
// called and every answer comes from the keyword fallback.
func New(cfg Config) *Advisor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	var client *openai.Client
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		clientCfg.BaseURL = cfg.BaseURL
		client = openai.NewClientWithConfig(clientCfg)
	}

	return &Advisor{
		client:  client,
		model:   cfg.Model,
		enabled: cfg.APIKey != "",
		market:  cfg.Market,
		profile: DemoProfile(),
		log:     cfg.Log.With().Str("service", "advisor").Logger(),
	}
}

// Chat answers a user question given the conversation history. Only the
// most recent turns are forwarded. Never returns an error: on any remote
// failure, or a reply shorter than 3 characters, the keyword fallback
// answers instead.
func (a *Advisor) Chat(ctx context.Context, question string, history []models.Message) string {
	if !a.enabled {
		a.log.Debug().Msg("remote model disabled, using keyword fallback")
		return fallbackResponse(question, a.profile)
	}

	recent := recentHistory(history)

	messages := make([]openai.ChatCompletionMessage, 0, len(recent)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: a.systemPrompt(ctx),
	})
	for _, m := range recent {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		MaxTokens:   300,
		Temperature: 0.5,
		TopP:        0.7,
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("chat completion failed, using keyword fallback")
		return fallbackResponse(question, a.profile)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if len(content) < 3 {
		a.log.Warn().Msg("empty chat completion, using keyword fallback")
		return fallbackResponse(question, a.profile)
	}
	return content
}

// InvestmentAdvice gives a short assessment of a planned OFZ investment.
// amount is in rubles, bondYield in percent per year, years the holding
// period. Never returns an error.
func (a *Advisor) InvestmentAdvice(ctx context.Context, amount int64, bondYield float64, years int) string {
	expectedProfit := int64(float64(amount) * bondYield / 100 * float64(years))

	if !a.enabled {
		return fallbackInvestmentAdvice(amount, bondYield, years, expectedProfit)
	}

	prompt := fmt.Sprintf(`Пользователь планирует инвестировать %s рублей в ОФЗ 26238 (облигации федерального займа РФ) с доходностью %.1f%% годовых на срок %d года. Ожидаемая прибыль: %s рублей.

Как финансовый советник, дай краткую позитивную оценку этого плана (2-3 предложения):
- Почему ОФЗ - разумный выбор для консервативного инвестора
- Что важно учесть при таком вложении
- Как можно диверсифицировать портфель

Твой ответ должен поддерживать решение и быть конструктивным. Используй эмодзи 💼 в начале.`,
		formatMoney(amount), bondYield, years, formatMoney(expectedProfit))

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Ты опытный финансовый советник который помогает людям принимать взвешенные инвестиционные решения. Ты позитивный, конструктивный и даешь практичные советы на русском языке. Ты поддерживаешь разумные консервативные решения.",
			},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   250,
		Temperature: 0.7,
		TopP:        0.9,
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("advice completion failed, using fallback")
		return fallbackInvestmentAdvice(amount, bondYield, years, expectedProfit)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if len(content) < 10 {
		return fallbackInvestmentAdvice(amount, bondYield, years, expectedProfit)
	}
	return content
}

// recentHistory bounds the forwarded conversation to the last turns.
func recentHistory(history []models.Message) []models.Message {
	if len(history) > historyWindow {
		return history[len(history)-historyWindow:]
	}
	return history
}

func fallbackInvestmentAdvice(amount int64, bondYield float64, years int, expectedProfit int64) string {
	return fmt.Sprintf("💼 ОФЗ с доходностью %.1f%% - надёжный выбор для консервативного инвестора. За %d года вы заработаете ~%s₽. При текущей высокой ключевой ставке ЦБ это отличная доходность. Рекомендация: это хорошая база портфеля (60-70%%), остальное можно вложить в более доходные, но рискованные инструменты.",
		bondYield, years, formatMoney(expectedProfit))
}

// Profile returns the demo user financial context.
func (a *Advisor) Profile() Profile {
	return a.profile
}
