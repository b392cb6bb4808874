package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"finnow/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

// Plan generation errors. All of them resolve to the static fallback plan;
// they are never surfaced to callers.
var (
	errPlanParse      = errors.New("plan output not well-formed")
	errPlanValidation = errors.New("plan allocation malformed")
)

var riskDescriptions = map[models.RiskLevel]string{
	models.RiskLow:    "низкий (консервативный, защита капитала)",
	models.RiskMedium: "средний (сбалансированный, умеренный рост)",
	models.RiskHigh:   "высокий (агрессивный, максимальный доход)",
}

// GeneratePlan builds a personal investment allocation for amount rubles
// at the given risk level. The remote model's output is parsed against a
// strict schema; any violation (bad JSON, empty instruments, allocations
// not summing to exactly 100) discards the remote result in favor of the
// hardcoded plan for that risk level. Never returns an error.
func (a *Advisor) GeneratePlan(ctx context.Context, amount int64, risk models.RiskLevel) models.InvestmentPlan {
	if !risk.Valid() {
		risk = models.RiskMedium
	}

	if !a.enabled {
		return fallbackPlan(amount, risk)
	}

	prompt := fmt.Sprintf(`Создай персональный план инвестиций для российского инвестора.

Параметры:
- Сумма: %s рублей
- Уровень риска: %s

Составь диверсифицированный портфель из 3-4 инструментов. Используй:
- Для низкого риска: ОФЗ (60-80%%), корпоративные облигации (20-30%%), акции голубых фишек (0-10%%)
- Для среднего риска: ОФЗ/облигации (40-50%%), акции (40-50%%), золото/ETF (10%%)
- Для высокого риска: акции роста (50-60%%), крипто (20-30%%), венчур/ETF (20%%)

Верни ТОЛЬКО валидный JSON в таком формате (без дополнительного текста):
{
  "instruments": [
    {
      "name": "Название инструмента",
      "type": "Тип (Облигации/Акции/Крипто/ETF)",
      "allocation": число от 0 до 100 (процент),
      "expectedYield": число (ожидаемая доходность в %% годовых),
      "description": "Краткое описание (1 предложение)"
    }
  ],
  "expectedYield": число (средняя доходность портфеля в %%),
  "timeframe": "строка (рекомендуемый срок инвестирования)",
  "aiReasoning": "Краткая аргументация выбора (2-3 предложения)"
}

Важно: allocation должны в сумме давать 100. Используй реальные российские инструменты.`,
		formatMoney(amount), riskDescriptions[risk])

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Ты финансовый советник для российского рынка. Возвращай ТОЛЬКО валидный JSON, без дополнительного текста или markdown.",
			},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   800,
		Temperature: 0.7,
		TopP:        0.9,
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("plan completion failed, using fallback plan")
		return fallbackPlan(amount, risk)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if len(content) < 10 {
		return fallbackPlan(amount, risk)
	}

	plan, err := parsePlan(content, amount, risk)
	if err != nil {
		a.log.Warn().Err(err).Msg("rejecting remote plan, using fallback plan")
		return fallbackPlan(amount, risk)
	}
	return plan
}

// planPayload is the strict schema expected from the remote model.
type planPayload struct {
	Instruments []struct {
		Name          string  `json:"name"`
		Type          string  `json:"type"`
		Allocation    int     `json:"allocation"`
		ExpectedYield float64 `json:"expectedYield"`
		Description   string  `json:"description"`
	} `json:"instruments"`
	ExpectedYield float64 `json:"expectedYield"`
	Timeframe     string  `json:"timeframe"`
	AIReasoning   string  `json:"aiReasoning"`
}

// parsePlan extracts the JSON object from the model output (it may be
// wrapped in markdown fences or prose) and validates it. Allocations must
// be integers in [0,100] summing to exactly 100; amounts are derived as
// floor(total*allocation/100), never renormalized.
func parsePlan(content string, amount int64, risk models.RiskLevel) (models.InvestmentPlan, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return models.InvestmentPlan{}, fmt.Errorf("%w: no JSON object in output", errPlanParse)
	}

	var payload planPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return models.InvestmentPlan{}, fmt.Errorf("%w: %v", errPlanParse, err)
	}

	if len(payload.Instruments) == 0 {
		return models.InvestmentPlan{}, fmt.Errorf("%w: no instruments", errPlanValidation)
	}
	if payload.Timeframe == "" || payload.ExpectedYield < 0 {
		return models.InvestmentPlan{}, fmt.Errorf("%w: missing timeframe or negative yield", errPlanValidation)
	}

	allocSum := 0
	for _, inst := range payload.Instruments {
		if inst.Name == "" || inst.Allocation < 0 || inst.Allocation > 100 || inst.ExpectedYield < 0 {
			return models.InvestmentPlan{}, fmt.Errorf("%w: bad instrument %q", errPlanValidation, inst.Name)
		}
		allocSum += inst.Allocation
	}
	if allocSum != 100 {
		return models.InvestmentPlan{}, fmt.Errorf("%w: allocations sum to %d", errPlanValidation, allocSum)
	}

	instruments := make([]models.Instrument, 0, len(payload.Instruments))
	for i, inst := range payload.Instruments {
		instruments = append(instruments, models.Instrument{
			ID:            fmt.Sprintf("inst-%d-%d", time.Now().UnixMilli(), i),
			Name:          inst.Name,
			Type:          inst.Type,
			Allocation:    inst.Allocation,
			Amount:        amount * int64(inst.Allocation) / 100,
			ExpectedYield: inst.ExpectedYield,
			Description:   inst.Description,
			RiskLevel:     risk,
		})
	}

	return models.InvestmentPlan{
		Instruments:   instruments,
		ExpectedYield: payload.ExpectedYield,
		Timeframe:     payload.Timeframe,
		Reasoning:     payload.AIReasoning,
	}, nil
}

// fallbackPlan returns the hardcoded plan for a risk level, with amounts
// derived from the requested total.
func fallbackPlan(amount int64, risk models.RiskLevel) models.InvestmentPlan {
	alloc := func(pct int) int64 { return amount * int64(pct) / 100 }

	switch risk {
	case models.RiskLow:
		return models.InvestmentPlan{
			Instruments: []models.Instrument{
				{ID: "ofz-1", Name: "ОФЗ 26238", Type: "Облигации", Allocation: 70, Amount: alloc(70), ExpectedYield: 12.5,
					Description: "Государственные облигации РФ с фиксированной доходностью", RiskLevel: models.RiskLow},
				{ID: "corp-bonds-1", Name: "Корпоративные облигации", Type: "Облигации", Allocation: 25, Amount: alloc(25), ExpectedYield: 14.0,
					Description: "Облигации надежных российских компаний (Газпром, Сбербанк)", RiskLevel: models.RiskLow},
				{ID: "stocks-1", Name: "Акции голубых фишек", Type: "Акции", Allocation: 5, Amount: alloc(5), ExpectedYield: 15.0,
					Description: "Акции крупнейших компаний ММВБ (Сбербанк, Газпром, Лукойл)", RiskLevel: models.RiskLow},
			},
			ExpectedYield: 12.8,
			Timeframe:     "2-3 года",
			Reasoning:     "Консервативный портфель ориентирован на защиту капитала и стабильный доход. 95% в облигациях обеспечивают надежность, небольшая доля акций добавляет потенциал роста.",
		}
	case models.RiskHigh:
		return models.InvestmentPlan{
			Instruments: []models.Instrument{
				{ID: "growth-stocks-1", Name: "Акции роста", Type: "Акции", Allocation: 50, Amount: alloc(50), ExpectedYield: 25.0,
					Description: "Акции быстрорастущих технологических компаний и второго эшелона", RiskLevel: models.RiskHigh},
				{ID: "crypto-1", Name: "Криптовалюты", Type: "Крипто", Allocation: 30, Amount: alloc(30), ExpectedYield: 40.0,
					Description: "BTC и ETH для высокой доходности при повышенном риске", RiskLevel: models.RiskHigh},
				{ID: "tech-etf-1", Name: "Технологические ETF", Type: "ETF", Allocation: 20, Amount: alloc(20), ExpectedYield: 20.0,
					Description: "Фонды технологических компаний для диверсификации", RiskLevel: models.RiskHigh},
			},
			ExpectedYield: 28.0,
			Timeframe:     "6-12 месяцев",
			Reasoning:     "Агрессивный портфель нацелен на максимальную доходность. Высокая доля акций роста и криптовалют дает потенциал значительного увеличения капитала, но требует готовности к волатильности.",
		}
	default:
		return models.InvestmentPlan{
			Instruments: []models.Instrument{
				{ID: "ofz-2", Name: "ОФЗ и корп. облигации", Type: "Облигации", Allocation: 45, Amount: alloc(45), ExpectedYield: 13.0,
					Description: "Смесь государственных и корпоративных облигаций для стабильности", RiskLevel: models.RiskMedium},
				{ID: "stocks-2", Name: "Российские акции", Type: "Акции", Allocation: 40, Amount: alloc(40), ExpectedYield: 18.0,
					Description: "Диверсифицированный портфель акций ММВБ с потенциалом роста", RiskLevel: models.RiskMedium},
				{ID: "gold-etf-1", Name: "Золото / ETF", Type: "ETF", Allocation: 15, Amount: alloc(15), ExpectedYield: 8.0,
					Description: "Защитный актив для хеджирования рисков", RiskLevel: models.RiskMedium},
			},
			ExpectedYield: 14.5,
			Timeframe:     "1-2 года",
			Reasoning:     "Сбалансированный портфель сочетает надежность облигаций с потенциалом роста акций. Золото служит защитой от волатильности рынка.",
		}
	}
}
