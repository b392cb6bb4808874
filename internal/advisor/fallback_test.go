package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"Сколько будет 2+2?", IntentArithmetic},
		{"посчитай (100-20)*3", IntentArithmetic},
		{"какую карту взять в ресторан", IntentCardRestaurant},
		{"какой картой платить за такси", IntentCardTaxi},
		{"как мне экономить", IntentSavings},
		{"сделай анализ моих трат", IntentSpending},
		{"хватит ли мне денег", IntentBudgetRunway},
		{"какой прогноз по бюджету", IntentForecast},
		{"можно ли получить налоговый вычет", IntentTaxDeduction},
		{"какая карта лучшая", IntentBestCard},
		{"стоит ли покупать акции", IntentStocks},
		{"расскажи про облигации", IntentBonds},
		{"с чего начать инвестиции", IntentInvesting},
		{"куда лучше положить деньги", IntentMoneyPlacement},
		{"какой риск для инвестора", IntentRisk},
		{"привет", IntentDefault},
		{"итоги 2024", IntentDefault},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyIntent(tc.message), tc.message)
	}
}

// Overlapping keyword sets resolve by table order: a question that
// mentions both risk and stocks is answered as a stocks question.
func TestClassifyIntentPriority(t *testing.T) {
	assert.Equal(t, IntentStocks, classifyIntent("какой риск у акций?"))
	assert.Equal(t, IntentSavings, classifyIntent("как экономить на расходах"))
}

func TestFallbackArithmetic(t *testing.T) {
	got := fallbackResponse("Сколько будет 2+2?", DemoProfile())
	assert.Contains(t, got, "4")
	assert.Contains(t, got, "2+2")
}

func TestFallbackDeterministicIgnoringCase(t *testing.T) {
	p := DemoProfile()
	a := fallbackResponse("СТОИТ ЛИ ПОКУПАТЬ АКЦИИ", p)
	b := fallbackResponse("стоит ли покупать акции", p)
	assert.Equal(t, a, b)
	assert.Equal(t, a, fallbackResponse("стоит ли покупать акции", p))
}

func TestFallbackUsesProfileNumbers(t *testing.T) {
	p := DemoProfile()

	got := fallbackResponse("какую карту взять в ресторан", p)
	assert.Contains(t, got, p.Accounts[0].Name)
	assert.Contains(t, got, formatMoney(p.Accounts[0].Balance))

	got = fallbackResponse("сделай анализ моих трат", p)
	assert.Contains(t, got, formatMoney(p.MonthlyStats.Expenses))
	assert.Contains(t, got, p.MonthlyStats.TopCategory)
}

func TestFallbackDefaultListsCapabilities(t *testing.T) {
	got := fallbackResponse("привет", DemoProfile())
	assert.Contains(t, got, "Анализом расходов")
}
