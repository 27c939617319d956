package menu

import (
	"strings"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// Request — пожелания клиента поверх рецепта. Пустые поля означают «как в рецепте».
type Request struct {
	size     domain.Size
	milk     string
	addOns   []string
	takeaway bool
}

// RequestOption настраивает Request.
type RequestOption func(*Request)

// WithSize задаёт объём напитка.
func WithSize(size domain.Size) RequestOption {
	return func(r *Request) {
		r.size = size
	}
}

// WithMilk задаёт вид молока.
func WithMilk(milk string) RequestOption {
	return func(r *Request) {
		r.milk = strings.TrimSpace(milk)
	}
}

// WithAddOns добавляет топпинги к рецептурным.
func WithAddOns(addOns ...string) RequestOption {
	return func(r *Request) {
		for _, addOn := range addOns {
			if addOn = strings.TrimSpace(addOn); addOn != "" {
				r.addOns = append(r.addOns, addOn)
			}
		}
	}
}

// Takeaway помечает заказ «с собой».
func Takeaway() RequestOption {
	return func(r *Request) {
		r.takeaway = true
	}
}

// NewRequest собирает запрос из опций.
func NewRequest(options ...RequestOption) Request {
	var r Request
	for _, option := range options {
		option(&r)
	}
	return r
}

func (r Request) Size() (domain.Size, bool) { return r.size, r.size != "" }
func (r Request) Milk() (string, bool)      { return r.milk, r.milk != "" }
func (r Request) AddOns() []string          { return append([]string(nil), r.addOns...) }
func (r Request) IsTakeaway() bool          { return r.takeaway }
