package advisor

import (
	"fmt"
	"regexp"
	"strings"
)

// Canned responses used when the remote model is unavailable or returns
// junk. The branches form an explicit priority list: the first matching
// intent wins, which makes tie-breaks between overlapping keyword sets
// (e.g. "риск" + "облигации") auditable and testable.

// Intent names, in priority order.
const (
	IntentArithmetic     = "arithmetic"
	IntentCardRestaurant = "card_restaurant"
	IntentCardTaxi       = "card_taxi"
	IntentSavings        = "savings"
	IntentSpending       = "spending_analysis"
	IntentBudgetRunway   = "budget_runway"
	IntentForecast       = "forecast"
	IntentTaxDeduction   = "tax_deduction"
	IntentBestCard       = "best_card"
	IntentStocks         = "stocks"
	IntentBonds          = "bonds"
	IntentInvesting      = "investing_general"
	IntentMoneyPlacement = "money_placement"
	IntentRisk           = "investment_risk"
	IntentDefault        = "default"
)

type intent struct {
	name  string
	match func(msg string) bool
}

func containsAny(msg string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// intentTable holds every keyword intent except arithmetic, which needs
// the raw message text and is checked first in fallbackResponse.
var intentTable = []intent{
	{IntentCardRestaurant, func(m string) bool {
		return strings.Contains(m, "карт") && containsAny(m, "ресторан", "кафе", "обед")
	}},
	{IntentCardTaxi, func(m string) bool {
		return strings.Contains(m, "карт") && containsAny(m, "такси", "доставк")
	}},
	{IntentSavings, func(m string) bool {
		return containsAny(m, "эконом", "сбереч")
	}},
	{IntentSpending, func(m string) bool {
		return containsAny(m, "анализ", "расход", "трат")
	}},
	{IntentBudgetRunway, func(m string) bool {
		return containsAny(m, "хватит", "денег", "конец месяца")
	}},
	{IntentForecast, func(m string) bool {
		return containsAny(m, "прогноз", "будущ")
	}},
	{IntentTaxDeduction, func(m string) bool {
		return containsAny(m, "налог", "вычет", "льгот")
	}},
	{IntentBestCard, func(m string) bool {
		return strings.Contains(m, "карт") && strings.Contains(m, "лучш")
	}},
	{IntentStocks, func(m string) bool {
		return containsAny(m, "акци", "сбербанк", "газпром", "яндекс")
	}},
	{IntentBonds, func(m string) bool {
		return containsAny(m, "облигаци", "офз", "бонд")
	}},
	{IntentInvesting, func(m string) bool {
		return containsAny(m, "инвестиц", "инвестир", "вложи", "куда вложить")
	}},
	{IntentMoneyPlacement, func(m string) bool {
		return containsAny(m, "что", "куда") &&
			containsAny(m, "лучше", "выгодн") &&
			containsAny(m, "деньги", "средства")
	}},
	{IntentRisk, func(m string) bool {
		return strings.Contains(m, "риск") && containsAny(m, "акци", "инвест")
	}},
}

var mathExprPattern = regexp.MustCompile(`[0-9+\-*/().]{3,}`)

// classifyIntent returns the name of the first matching intent.
func classifyIntent(message string) string {
	msg := strings.ToLower(message)

	// A bare number ("итоги 2024") is not a calculation request, so the
	// match must carry at least one operator.
	if expr := mathExprPattern.FindString(msg); expr != "" && strings.ContainsAny(expr, "+-*/") {
		if _, err := evalMath(expr); err == nil {
			return IntentArithmetic
		}
	}

	for _, in := range intentTable {
		if in.match(msg) {
			return in.name
		}
	}
	return IntentDefault
}

// fallbackResponse renders the canned answer for a message, filled with
// live numbers from the user profile. Deterministic: identical input
// (ignoring case) always yields the same response.
func fallbackResponse(message string, p Profile) string {
	switch classifyIntent(message) {
	case IntentArithmetic:
		expr := mathExprPattern.FindString(strings.ToLower(message))
		result, _ := evalMath(expr)
		return fmt.Sprintf("🧮 %s = %s", expr, formatMathResult(result))

	case IntentCardRestaurant:
		return fmt.Sprintf("🍽️ Рекомендую %s - там сейчас кэшбэк 5%% на рестораны! Это вернёт вам часть денег. Баланс: %s₽.",
			p.Accounts[0].Name, formatMoney(p.Accounts[0].Balance))

	case IntentCardTaxi:
		return fmt.Sprintf("🚕 Для такси и доставки используйте %s - кэшбэк 10%%! Это значительная экономия. Доступно: %s₽.",
			p.Accounts[1].Name, formatMoney(p.Accounts[1].Balance))

	case IntentSavings:
		return "💰 Заметил, что на рестораны вы тратите 8,400₽/мес - это на 15% выше среднего. Попробуйте готовить дома 2-3 раза в неделю. Потенциальная экономия: ~2,500₽/месяц!"

	case IntentSpending:
		return fmt.Sprintf("📊 За апрель вы потратили %s₽. Топ категория: %s. Ваш коэффициент сбережений: 49%% - отлично! Продолжайте в том же духе.",
			formatMoney(p.MonthlyStats.Expenses), p.MonthlyStats.TopCategory)

	case IntentBudgetRunway:
		return fmt.Sprintf("✅ При текущем темпе трат у вас хватит денег до конца месяца. Общий баланс: %s₽. Вы откладываете ~49%% дохода - это здорово!",
			formatMoney(p.MonthlyStats.TotalBalance))

	case IntentForecast:
		projected := p.MonthlyStats.TotalBalance - p.MonthlyStats.Expenses + p.MonthlyStats.Income
		return fmt.Sprintf("🔮 При текущих тратах (%s₽/мес) к концу месяца у вас будет ~%s₽. Вы на правильном пути!",
			formatMoney(p.MonthlyStats.Expenses), formatMoney(projected))

	case IntentTaxDeduction:
		return "🏛️ Вы можете получить налоговый вычет за медицинские услуги. Проверьте чеки за год - потенциальная экономия до 15,600₽ (13% от расходов). Оформляется через налоговую."

	case IntentBestCard:
		return "💳 У вас 3 карты:\n• Альфа-Банк (5% на рестораны)\n• Т-Банк (10% на такси/доставку)\n• Сбербанк (8% годовых)\n\nИспользуйте карту по категории покупки для максимального кэшбэка!"

	case IntentStocks:
		return "📈 Актуальные котировки российских акций (4 дек 2024): Сбербанк 300₽, Газпром 125₽, Яндекс 4145₽. Акции подходят для долгосрочных инвестиций (3-5 лет). Помните: они могут падать на 20-40%, инвестируйте только свободные средства!"

	case IntentBonds:
		return "📊 ОФЗ (облигации федерального займа) — надёжный инструмент с доходностью 14-15% годовых из-за высокой ключевой ставки ЦБ. Риск минимален — государство гарантирует выплаты. Отличная альтернатива банковским вкладам."

	case IntentInvesting:
		return fmt.Sprintf("💼 Для начала инвестиций рекомендую:\n• 60-70%% в ОФЗ (стабильность, 14-15%% годовых)\n• 30-40%% в голубые фишки (рост, дивиденды)\n• Горизонт от 3 лет\n\nВаш накопительный счёт (%s₽) хорошо подходит для старта!",
			formatMoney(p.Accounts[2].Balance))

	case IntentMoneyPlacement:
		return fmt.Sprintf("💡 С вашими сбережениями (%s₽/мес) есть варианты:\n• Накопительный счёт: 8%% без риска\n• ОФЗ: 14-15%%, низкий риск\n• Акции: потенциально больше, но с риском\n\nРекомендую диверсификацию!",
			formatMoney(p.MonthlyStats.Savings))

	case IntentRisk:
		return "⚠️ Риски инвестиций:\n• Акции могут упасть на 20-40%\n• Не вкладывайте деньги на срок <3 лет\n• Диверсифицируйте (разные компании)\n• Инвестируйте только свободные средства\n\nНачните с 10-20% от сбережений."

	default:
		return "Понял ваш вопрос! 🤔 Могу помочь с:\n• Выбором карты для покупок\n• Анализом расходов\n• Советами по экономии\n• Прогнозом бюджета\n• Рекомендациями по инвестициям\n\nУточните, что именно вас интересует?"
	}
}
