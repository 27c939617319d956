package domain

import (
	"fmt"
	"strings"
)

// MaxComboDiscountPercent — верхняя граница скидки на комбо.
const MaxComboDiscountPercent = 50

// SingleOrder — одна позиция: напиток, его базовая цена и добавки.
type SingleOrder struct {
	Coffee    Coffee
	BaseMinor int64
	Modifiers []Modifier
}

// NewSingleOrder проверяет напиток и добавки и возвращает позицию заказа.
func NewSingleOrder(coffee Coffee, baseMinor int64, modifiers ...Modifier) (*SingleOrder, error) {
	if err := coffee.Validate(); err != nil {
		return nil, err
	}
	if baseMinor < 0 {
		return nil, ErrPriceNegative
	}
	for _, m := range modifiers {
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}
	mods := make([]Modifier, len(modifiers))
	copy(mods, modifiers)
	return &SingleOrder{Coffee: coffee, BaseMinor: baseMinor, Modifiers: mods}, nil
}

func (o *SingleOrder) Description() string {
	_, description := ApplyModifiers(o.BaseMinor, o.Coffee.Name, o.Modifiers)
	return description
}

func (o *SingleOrder) TotalMinor() int64 {
	total, _ := ApplyModifiers(o.BaseMinor, o.Coffee.Name, o.Modifiers)
	return total
}

func (o *SingleOrder) ItemCount() int { return 1 }

func (o *SingleOrder) Lines() []string {
	return []string{fmt.Sprintf("  - %s (%s)", o.Description(), FormatMinor(o.TotalMinor()))}
}

// ComboOrder группирует позиции и применяет к ним скидку.
type ComboOrder struct {
	Name            string
	DiscountPercent int
	Items           []OrderComponent
}

// NewComboOrder создаёт пустое комбо.
func NewComboOrder(name string, discountPercent int) (*ComboOrder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrComboNameRequired
	}
	if discountPercent < 0 || discountPercent > MaxComboDiscountPercent {
		return nil, fmt.Errorf("%w: %d", ErrDiscountOutOfRange, discountPercent)
	}
	return &ComboOrder{Name: name, DiscountPercent: discountPercent}, nil
}

// Add добавляет позицию в комбо. Пустая позиция игнорируется.
// Комбо, уже содержащее c на любом уровне вложенности, отклоняется с ErrComboCycle.
func (c *ComboOrder) Add(item OrderComponent) error {
	if IsNilOrder(item) {
		return nil
	}
	if nested, ok := item.(*ComboOrder); ok && nested.contains(c) {
		return fmt.Errorf("%w: %s", ErrComboCycle, c.Name)
	}
	c.Items = append(c.Items, item)
	return nil
}

// contains сообщает, является ли target этим комбо или вложенной в него позицией.
func (c *ComboOrder) contains(target *ComboOrder) bool {
	if c == target {
		return true
	}
	for _, item := range c.Items {
		if nested, ok := item.(*ComboOrder); ok && nested.contains(target) {
			return true
		}
	}
	return false
}

// IsNilOrder сообщает, пуст ли заказ, в том числе nil-указатель в интерфейсе.
func IsNilOrder(order OrderComponent) bool {
	switch o := order.(type) {
	case nil:
		return true
	case *SingleOrder:
		return o == nil
	case *ComboOrder:
		return o == nil
	}
	return false
}

// Remove убирает первую совпадающую позицию и сообщает, была ли она найдена.
func (c *ComboOrder) Remove(item OrderComponent) bool {
	for i, existing := range c.Items {
		if existing == item {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *ComboOrder) Description() string {
	return fmt.Sprintf("%s (Contains %d items)", c.Name, c.ItemCount())
}

// TotalMinor считает сумму позиций со скидкой, округляя до ближайшей копейки.
func (c *ComboOrder) TotalMinor() int64 {
	var sum int64
	for _, item := range c.Items {
		sum += item.TotalMinor()
	}
	return (sum*int64(100-c.DiscountPercent) + 50) / 100
}

func (c *ComboOrder) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.ItemCount()
	}
	return count
}

func (c *ComboOrder) Lines() []string {
	lines := []string{c.Name + ":"}
	for _, item := range c.Items {
		for _, line := range item.Lines() {
			lines = append(lines, "  "+line)
		}
	}
	if c.DiscountPercent > 0 {
		lines = append(lines, fmt.Sprintf("  Combo Discount: -%d%%", c.DiscountPercent))
	}
	return lines
}

// FormatMinor печатает сумму в минимальных единицах как $X.YY.
func FormatMinor(amountMinor int64) string {
	sign := ""
	if amountMinor < 0 {
		sign = "-"
		amountMinor = -amountMinor
	}
	return fmt.Sprintf("%s$%d.%02d", sign, amountMinor/100, amountMinor%100)
}

var (
	_ OrderComponent = (*SingleOrder)(nil)
	_ OrderComponent = (*ComboOrder)(nil)
)
