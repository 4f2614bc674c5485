package models

import "time"

// Статусы заказа. Помимо перечисленных админ может выставить произвольную
// строку через ручную смену статуса, это осознанный люк.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// Тарифы, доступные к покупке.
const (
	PlanOneTime = "one_time"
	PlanStarter = "starter"
	PlanGrowth  = "growth"
)

// PlanAmounts фиксированная таблица цен тарифов в минорных единицах валюты.
// Сумма заказа берётся только отсюда и после создания не пересчитывается.
var PlanAmounts = map[string]int{
	PlanOneTime: 7500,
	PlanStarter: 29900,
	PlanGrowth:  49900,
}

// ValidPlan проверяет тариф по фиксированному списку.
func ValidPlan(plan string) bool {
	_, ok := PlanAmounts[plan]
	return ok
}

// Order представляет запись о попытке покупки и её платёжном статусе.
// SessionID — ссылка на checkout-сессию шлюза (уникальная), PaymentID
// появляется после подтверждения оплаты вебхуком.
type Order struct {
	ID        int       `json:"id"`
	UserID    int       `json:"-"`
	SessionID string    `json:"-"`
	PaymentID *string   `json:"-"`
	Plan      string    `json:"plan"`
	Amount    int       `json:"-"`      // Минорные единицы, наружу отдаются как Amount/100
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderView представление заказа для JSON-ответов, сумма в основных единицах.
type OrderView struct {
	ID        int       `json:"id"`
	Plan      string    `json:"plan"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UserEmail string    `json:"user_email,omitempty"`
}

// View конвертирует заказ в представление для ответа API.
func (o *Order) View() OrderView {
	return OrderView{
		ID:        o.ID,
		Plan:      o.Plan,
		Amount:    float64(o.Amount) / 100,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}

// OrderWithEmail заказ вместе с почтой владельца, используется админскими списками.
type OrderWithEmail struct {
	Order
	UserEmail string
}
