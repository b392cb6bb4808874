package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finnow/internal/models"
)

var ruMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// moscowTime renders the current wall-clock time in Moscow, the fixed
// timezone all prompts are anchored to.
func moscowTime(now time.Time) string {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	t := now.In(loc)
	return fmt.Sprintf("%d %s %d г., %02d:%02d", t.Day(), ruMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

func signPrefix(v float64) string {
	if v >= 0 {
		return "+"
	}
	return ""
}

// marketDataSection renders the live-data block of the system prompt from
// the four resource snapshots.
func marketDataSection(now time.Time, crypto []models.CryptoPrice, rates []models.CurrencyRate, stocks []models.StockQuote, bonds []models.BondQuote) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n**АКТУАЛЬНЫЕ ДАННЫЕ (%s):**\n\n", moscowTime(now))

	if len(crypto) > 0 {
		b.WriteString("Криптовалюты:\n")
		for _, c := range crypto {
			fmt.Fprintf(&b, "- %s (%s): $%s (%s%.2f%% за 24ч)\n",
				c.Name, c.Symbol, formatDollar(c.Price), signPrefix(c.ChangePct24h), c.ChangePct24h)
		}
		b.WriteString("\n")
	}

	if len(rates) > 0 {
		b.WriteString("Курсы валют (к USD):\n")
		for _, r := range rates {
			fmt.Fprintf(&b, "- 1 USD = %.2f %s\n", r.Rate, r.Currency)
		}
		b.WriteString("\n")
	}

	if len(stocks) > 0 {
		b.WriteString("Российские акции (MOEX):\n")
		for _, s := range stocks {
			fmt.Fprintf(&b, "- %s (%s): %.2f₽ (%s%.2f%%)\n",
				s.Name, s.Ticker, s.Price, signPrefix(s.ChangePct), s.ChangePct)
		}
		b.WriteString("\n")
	}

	if len(bonds) > 0 {
		b.WriteString("Облигации федерального займа (ОФЗ):\n")
		for _, bd := range bonds {
			fmt.Fprintf(&b, "- %s: %.2f%% от номинала, доходность %.2f%% годовых\n",
				bd.Name, bd.Price, bd.Yield)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// formatDollar renders a USD price with two decimals and comma grouping.
func formatDollar(v float64) string {
	whole := int64(v)
	frac := int64((v-float64(whole))*100 + 0.5)
	if frac >= 100 {
		whole++
		frac -= 100
	}
	return fmt.Sprintf("%s.%02d", formatMoney(whole), frac)
}

// systemPrompt assembles the full instruction block: live market data,
// the user financial context and the assistant's behavior rules.
func (a *Advisor) systemPrompt(ctx context.Context) string {
	now := time.Now()
	crypto := a.market.Crypto(ctx)
	rates := a.market.Rates(ctx)
	stocks := a.market.Stocks(ctx)
	bonds := a.market.Bonds(ctx)

	p := a.profile

	accounts := make([]string, 0, len(p.Accounts))
	for _, acc := range p.Accounts {
		accounts = append(accounts, fmt.Sprintf("- %s (%s): %s%s, %s", acc.Name, acc.Type, formatMoney(acc.Balance), acc.Currency, acc.Benefits))
	}

	transactions := make([]string, 0, len(p.RecentTransactions))
	for _, t := range p.RecentTransactions {
		transactions = append(transactions, fmt.Sprintf("- %s: %d₽ (%s, %s)", t.Title, t.Amount, t.Category, t.Date))
	}

	return fmt.Sprintf(`Ты - умный финансовый помощник в приложении FinNow. Твоя задача - помогать пользователю управлять личными финансами.

%s
**КОНТЕКСТ О ПОЛЬЗОВАТЕЛЕ:**

Счета и карты:
%s

Недавние транзакции:
%s

Статистика за месяц:
- Общий баланс: %s₽
- Расходы: %s₽
- Доходы: %s₽
- Сбережения: %s₽
- Топ категория: %s

**ПРАВИЛА:**
1. Отвечай ТОЛЬКО на русском языке
2. Давай конкретные персонализированные советы на основе данных пользователя
3. Будь кратким и по делу (макс. 3-4 предложения)
4. При вопросах о выборе карты - учитывай кэшбэк и категории месяца
5. Используй эмодзи для дружелюбности (но не переборщи)
6. Если вопрос не по финансам - вежливо напомни, что ты финансовый помощник
7. У тебя есть доступ к актуальным данным: криптовалюты, курсы валют, акции (MOEX), облигации (ОФЗ)
8. При вопросах об инвестициях давай взвешенные рекомендации с учетом рисков и доходности
9. Всегда предупреждай о рисках инвестиций (акции могут падать, облигации имеют инфляционный риск)
10. ВАЖНО: Используй ТОЛЬКО данные из раздела "АКТУАЛЬНЫЕ ДАННЫЕ" выше - там указана точная дата и время. НЕ выдумывай другие даты!

Теперь отвечай на вопросы пользователя!`,
		marketDataSection(now, crypto, rates, stocks, bonds),
		strings.Join(accounts, "\n"),
		strings.Join(transactions, "\n"),
		formatMoney(p.MonthlyStats.TotalBalance),
		formatMoney(p.MonthlyStats.Expenses),
		formatMoney(p.MonthlyStats.Income),
		formatMoney(p.MonthlyStats.Savings),
		p.MonthlyStats.TopCategory)
}
