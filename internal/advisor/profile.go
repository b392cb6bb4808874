package advisor

import "strings"

// Account is one card or account of the demo user profile.
type Account struct {
	Name     string
	Type     string
	Balance  int64
	Currency string
	Benefits string
}

// Transaction is one recent operation of the demo user profile.
type Transaction struct {
	Title    string
	Amount   int64
	Category string
	Date     string
}

// MonthlyStats summarizes the demo user's current month.
type MonthlyStats struct {
	TotalBalance int64
	Expenses     int64
	Income       int64
	Savings      int64
	TopCategory  string
}

// Profile is the user financial context fed into prompts and canned
// responses. Static demo content: the cashback figures and benefits are
// fixtures, same as the frontend presents them.
type Profile struct {
	Accounts           []Account
	RecentTransactions []Transaction
	MonthlyStats       MonthlyStats
}

// DemoProfile returns the fixed demo user context.
func DemoProfile() Profile {
	return Profile{
		Accounts: []Account{
			{Name: "Альфа-Банк •4567", Type: "Дебетовая карта", Balance: 84590, Currency: "₽", Benefits: "Кэшбэк 5% на рестораны в апреле"},
			{Name: "Т-Банк •1234", Type: "Кредитная карта", Balance: 45000, Currency: "₽", Benefits: "Кэшбэк 10% на такси и доставку в апреле"},
			{Name: "Сбербанк •7890", Type: "Накопительный счет", Balance: 125000, Currency: "₽", Benefits: "8% годовых"},
		},
		RecentTransactions: []Transaction{
			{Title: "Супермаркет Перекресток", Amount: 2450, Category: "Продукты", Date: "12 апреля"},
			{Title: "АЗС Газпромнефть", Amount: 1800, Category: "Транспорт", Date: "12 апреля"},
			{Title: "Кафе Брускетта", Amount: 1240, Category: "Рестораны", Date: "11 апреля"},
			{Title: "Netflix", Amount: 799, Category: "Подписки", Date: "11 апреля"},
			{Title: "Зарплата", Amount: 85000, Category: "Доход", Date: "10 апреля"},
		},
		MonthlyStats: MonthlyStats{
			TotalBalance: 254590,
			Expenses:     43250,
			Income:       85000,
			Savings:      41750,
			TopCategory:  "Рестораны (8,400₽ - на 15% выше среднего)",
		},
	}
}

// formatMoney renders an integer ruble amount with comma thousands
// separators, matching the frontend's toLocaleString output.
func formatMoney(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}

	digits := []byte{}
	if n == 0 {
		digits = append(digits, '0')
	}
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i := len(digits) - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
		if i > 0 && i%3 == 0 {
			b.WriteByte(',')
		}
	}
	return b.String()
}
