package payment

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// Ключи способов оплаты для метрик и консоли.
const (
	KindCash   = "cash"
	KindCard   = "card"
	KindMobile = "mobile"
	KindPoints = "points"
	KindOther  = "other"
)

const (
	minCardDigits    = 13
	minCVVDigits     = 3
	minorPerPoint    = 1
	maskedDigitCount = 4
)

// Receipt — результат успешной оплаты.
type Receipt struct {
	Reference   string
	Method      string
	AmountMinor int64
	ChangeMinor int64
	PointsUsed  int
	// Details — строки для вывода оператору.
	Details []string
}

// Strategy — способ оплаты.
type Strategy interface {
	Method() string
	Pay(amountMinor int64) (Receipt, error)
}

func newReceipt(method string, amountMinor int64) Receipt {
	return Receipt{Reference: uuid.NewString(), Method: method, AmountMinor: amountMinor}
}

// Cash принимает наличные и считает сдачу.
type Cash struct {
	ReceivedMinor int64
}

func NewCash(receivedMinor int64) *Cash { return &Cash{ReceivedMinor: receivedMinor} }

func (c *Cash) Method() string { return "Cash" }

func (c *Cash) Pay(amountMinor int64) (Receipt, error) {
	if c.ReceivedMinor < amountMinor {
		return Receipt{}, fmt.Errorf("%w: need %s more", domain.ErrInsufficientCash,
			domain.FormatMinor(amountMinor-c.ReceivedMinor))
	}
	receipt := newReceipt(c.Method(), amountMinor)
	receipt.ChangeMinor = c.ReceivedMinor - amountMinor
	receipt.Details = []string{
		"Amount due: " + domain.FormatMinor(amountMinor),
		"Cash received: " + domain.FormatMinor(c.ReceivedMinor),
	}
	if receipt.ChangeMinor > 0 {
		receipt.Details = append(receipt.Details, "Change: "+domain.FormatMinor(receipt.ChangeMinor))
	}
	return receipt, nil
}

// CreditCard проверяет длину номера и CVV.
type CreditCard struct {
	Number string
	Holder string
	CVV    string
	Expiry string
}

func NewCreditCard(number, holder, cvv, expiry string) *CreditCard {
	return &CreditCard{
		Number: strings.ReplaceAll(strings.TrimSpace(number), " ", ""),
		Holder: strings.TrimSpace(holder),
		CVV:    strings.TrimSpace(cvv),
		Expiry: strings.TrimSpace(expiry),
	}
}

func (c *CreditCard) Method() string { return "Credit Card" }

func (c *CreditCard) Pay(amountMinor int64) (Receipt, error) {
	if len(c.Number) < minCardDigits || len(c.CVV) < minCVVDigits {
		return Receipt{}, domain.ErrCardInvalid
	}
	receipt := newReceipt(c.Method(), amountMinor)
	receipt.Details = []string{
		"Card: **** **** **** " + lastDigits(c.Number),
		"Amount: " + domain.FormatMinor(amountMinor),
	}
	return receipt, nil
}

// Mobile — оплата через мобильное приложение; подтверждение всегда успешно.
type Mobile struct {
	Phone string
	App   string
}

func NewMobile(phone, app string) *Mobile {
	app = strings.TrimSpace(app)
	if app == "" {
		app = "Mobile Pay"
	}
	return &Mobile{Phone: strings.TrimSpace(phone), App: app}
}

func (m *Mobile) Method() string { return m.App }

func (m *Mobile) Pay(amountMinor int64) (Receipt, error) {
	receipt := newReceipt(m.Method(), amountMinor)
	receipt.Details = []string{
		"Payment request sent to " + MaskPhone(m.Phone),
		"Amount: " + domain.FormatMinor(amountMinor),
	}
	return receipt, nil
}

// MaskPhone оставляет видимыми последние четыре цифры.
func MaskPhone(phone string) string {
	if len(phone) < maskedDigitCount {
		return phone
	}
	return "***-***-" + lastDigits(phone)
}

// LoyaltyPoints списывает баллы: один балл за каждый цент.
type LoyaltyPoints struct {
	CustomerID string

	mu        sync.Mutex
	available int
}

func NewLoyaltyPoints(customerID string, available int) *LoyaltyPoints {
	return &LoyaltyPoints{CustomerID: strings.TrimSpace(customerID), available: available}
}

func (l *LoyaltyPoints) Method() string { return "Loyalty Points" }

// Available возвращает остаток баллов.
func (l *LoyaltyPoints) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.available
}

func (l *LoyaltyPoints) Pay(amountMinor int64) (Receipt, error) {
	required := int(amountMinor / minorPerPoint)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.available < required {
		return Receipt{}, fmt.Errorf("%w: need %d more points", domain.ErrInsufficientPoints, required-l.available)
	}
	l.available -= required

	receipt := newReceipt(l.Method(), amountMinor)
	receipt.PointsUsed = required
	receipt.Details = []string{
		"Customer ID: " + l.CustomerID,
		fmt.Sprintf("Points redeemed: %d", required),
		fmt.Sprintf("Remaining points: %d", l.available),
	}
	return receipt, nil
}

// KindOf возвращает ключ способа оплаты для метрик.
func KindOf(s Strategy) string {
	switch s.(type) {
	case *Cash:
		return KindCash
	case *CreditCard:
		return KindCard
	case *Mobile:
		return KindMobile
	case *LoyaltyPoints:
		return KindPoints
	default:
		return KindOther
	}
}

func lastDigits(s string) string {
	if len(s) <= maskedDigitCount {
		return s
	}
	return s[len(s)-maskedDigitCount:]
}

var (
	_ Strategy = (*Cash)(nil)
	_ Strategy = (*CreditCard)(nil)
	_ Strategy = (*Mobile)(nil)
	_ Strategy = (*LoyaltyPoints)(nil)
)
