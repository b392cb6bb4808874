// Package bot is the Telegram delivery surface of the FinNow assistant.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"finnow/internal/advisor"
	"finnow/internal/marketdata"
	"finnow/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// maxStoredTurns bounds the per-chat history kept in memory. The advisor
// forwards an even smaller window to the model.
const maxStoredTurns = 20

// Bot routes Telegram updates to the market data service and the advisor.
type Bot struct {
	api     *tgbotapi.BotAPI
	market  *marketdata.Service
	advisor *advisor.Advisor
	log     zerolog.Logger

	mu        sync.Mutex
	histories map[int64][]models.Message
	busy      map[int64]bool
}

// New creates a bot around an authorized Telegram API client.
func New(token string, market *marketdata.Service, adv *advisor.Advisor, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:       api,
		market:    market,
		advisor:   adv,
		log:       log.With().Str("service", "bot").Logger(),
		histories: make(map[int64][]models.Message),
		busy:      make(map[int64]bool),
	}, nil
}

// Start begins long-polling for updates. Blocks until the update channel
// closes.
func (b *Bot) Start(ctx context.Context) {
	b.log.Info().Str("account", b.api.Self.UserName).Msg("authorized")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.handleUpdates(ctx, updates)
}

func (b *Bot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil {
			continue
		}

		msg := update.Message
		chatID := msg.Chat.ID

		switch msg.Command() {
		case "start", "help":
			b.send(chatID, helpText)

		case "stocks":
			b.send(chatID, formatStocks(b.market.Stocks(ctx)))

		case "bonds":
			b.send(chatID, formatBonds(b.market.Bonds(ctx)))

		case "crypto":
			b.send(chatID, formatCrypto(b.market.Crypto(ctx)))

		case "rates":
			b.send(chatID, formatRates(b.market.Rates(ctx)))

		case "plan":
			b.handlePlan(ctx, chatID, msg.CommandArguments())

		case "advice":
			b.handleAdvice(ctx, chatID, msg.CommandArguments())

		default:
			if msg.Text != "" {
				b.handleChat(ctx, chatID, msg.Text)
			}
		}
	}
}

// handleChat answers a free-text question through the advisor. One chat
// turn may be in flight per chat; further messages get a busy notice
// instead of being queued.
func (b *Bot) handleChat(ctx context.Context, chatID int64, question string) {
	b.mu.Lock()
	if b.busy[chatID] {
		b.mu.Unlock()
		b.send(chatID, "⏳ Секунду, я ещё думаю над предыдущим вопросом...")
		return
	}
	b.busy[chatID] = true
	history := append([]models.Message(nil), b.histories[chatID]...)
	b.mu.Unlock()

	go func() {
		answer := b.advisor.Chat(ctx, question, history)
		b.send(chatID, answer)

		b.mu.Lock()
		turns := append(b.histories[chatID],
			models.Message{Role: models.RoleUser, Content: question},
			models.Message{Role: models.RoleAssistant, Content: answer})
		if len(turns) > maxStoredTurns {
			turns = turns[len(turns)-maxStoredTurns:]
		}
		b.histories[chatID] = turns
		b.busy[chatID] = false
		b.mu.Unlock()
	}()
}

func (b *Bot) handlePlan(ctx context.Context, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.send(chatID, "Использование: /plan <сумма> <low|medium|high>\nНапример: /plan 100000 medium")
		return
	}

	amount, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || amount <= 0 {
		b.send(chatID, "Сумма должна быть положительным числом в рублях.")
		return
	}
	risk := models.RiskLevel(strings.ToLower(fields[1]))
	if !risk.Valid() {
		b.send(chatID, "Уровень риска: low, medium или high.")
		return
	}

	plan := b.advisor.GeneratePlan(ctx, amount, risk)
	b.send(chatID, formatPlan(plan))
}

func (b *Bot) handleAdvice(ctx context.Context, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		b.send(chatID, "Использование: /advice <сумма> <доходность %> <срок лет>\nНапример: /advice 100000 14.5 3")
		return
	}

	amount, err1 := strconv.ParseInt(fields[0], 10, 64)
	bondYield, err2 := strconv.ParseFloat(fields[1], 64)
	years, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil || amount <= 0 || bondYield <= 0 || years <= 0 {
		b.send(chatID, "Все параметры должны быть положительными числами.")
		return
	}

	b.send(chatID, b.advisor.InvestmentAdvice(ctx, amount, bondYield, years))
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

const helpText = `💰 FinNow — ваш финансовый помощник

Команды:
/stocks — котировки российских акций (MOEX)
/bonds — котировки ОФЗ
/crypto — курсы криптовалют
/rates — курсы валют к USD
/plan <сумма> <low|medium|high> — персональный план инвестиций
/advice <сумма> <доходность> <срок> — оценка вложения в ОФЗ

Или просто задайте вопрос о ваших финансах!`

func changeIndicator(v float64) string {
	switch {
	case v > 0:
		return "🟢"
	case v < 0:
		return "🔴"
	default:
		return "➖"
	}
}

func formatStocks(stocks []models.StockQuote) string {
	var lines []string
	for _, s := range stocks {
		lines = append(lines, fmt.Sprintf("%s %s (%s) | 💰 %.2f₽ (%+.2f%%) | 📈 Объём: %s",
			changeIndicator(s.ChangePct), s.Name, s.Ticker, s.Price, s.ChangePct, formatVolume(s.Volume)))
	}
	return fmt.Sprintf("📈 РОССИЙСКИЕ АКЦИИ (MOEX)\n\n%s\n\n📊 Обновлено: %s",
		strings.Join(lines, "\n"), timestampUTC())
}

func formatBonds(bonds []models.BondQuote) string {
	var lines []string
	for _, bd := range bonds {
		lines = append(lines, fmt.Sprintf("▫️ %s (%s) | 💰 %.2f%% от номинала | 📈 Доходность: %.2f%% | Купон: %.1f%%",
			bd.Name, bd.Ticker, bd.Price, bd.Yield, bd.CouponRate))
	}
	return fmt.Sprintf("📊 ОБЛИГАЦИИ ФЕДЕРАЛЬНОГО ЗАЙМА\n\n%s\n\n📊 Обновлено: %s",
		strings.Join(lines, "\n"), timestampUTC())
}

func formatCrypto(prices []models.CryptoPrice) string {
	var lines []string
	for _, c := range prices {
		lines = append(lines, fmt.Sprintf("%s %s (%s) | 💰 $%.2f (%+.2f%% за 24ч)",
			changeIndicator(c.ChangePct24h), c.Name, c.Symbol, c.Price, c.ChangePct24h))
	}
	return fmt.Sprintf("₿ КРИПТОВАЛЮТЫ\n\n%s\n\n📊 Обновлено: %s",
		strings.Join(lines, "\n"), timestampUTC())
}

func formatRates(rates []models.CurrencyRate) string {
	var lines []string
	for _, r := range rates {
		lines = append(lines, fmt.Sprintf("▫️ 1 USD = %.2f %s", r.Rate, r.Currency))
	}
	return fmt.Sprintf("💱 КУРСЫ ВАЛЮТ\n\n%s\n\n📊 Обновлено: %s",
		strings.Join(lines, "\n"), timestampUTC())
}

func formatPlan(plan models.InvestmentPlan) string {
	var lines []string
	for _, inst := range plan.Instruments {
		lines = append(lines, fmt.Sprintf("▫️ %s (%s)\n   %d%% — %s₽, ~%.1f%% годовых\n   %s",
			inst.Name, inst.Type, inst.Allocation, groupAmount(inst.Amount), inst.ExpectedYield, inst.Description))
	}
	return fmt.Sprintf("💼 ВАШ ИНВЕСТИЦИОННЫЙ ПЛАН\n\n%s\n\n📈 Ожидаемая доходность: %.1f%% годовых\n⏳ Срок: %s\n\n%s",
		strings.Join(lines, "\n\n"), plan.ExpectedYield, plan.Timeframe, plan.Reasoning)
}

func formatVolume(v float64) string {
	if v == 0 {
		return "N/A"
	}
	if v >= 1e9 {
		return fmt.Sprintf("%.2f B", v/1e9)
	}
	if v >= 1e6 {
		return fmt.Sprintf("%.2f M", v/1e6)
	}
	return fmt.Sprintf("%.2f", v)
}

func groupAmount(n int64) string {
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 && r != '-' {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func timestampUTC() string {
	return time.Now().UTC().Format("2006-01-02 15:04 UTC")
}
