package domain

import (
	"fmt"
	"strings"
)

// CoffeeType — вид напитка из меню.
type CoffeeType string

const (
	CoffeeTypeEspresso   CoffeeType = "espresso"
	CoffeeTypeLatte      CoffeeType = "latte"
	CoffeeTypeCappuccino CoffeeType = "cappuccino"
)

// CoffeeTypes перечисляет напитки в порядке меню.
var CoffeeTypes = []CoffeeType{CoffeeTypeEspresso, CoffeeTypeLatte, CoffeeTypeCappuccino}

// DisplayName возвращает название напитка для меню и чеков.
func (t CoffeeType) DisplayName() string {
	switch t {
	case CoffeeTypeEspresso:
		return "Espresso"
	case CoffeeTypeLatte:
		return "Latte"
	case CoffeeTypeCappuccino:
		return "Cappuccino"
	default:
		return string(t)
	}
}

// ParseCoffeeType разбирает вид напитка по ключу или номеру в меню (1..3).
func ParseCoffeeType(raw string) (CoffeeType, error) {
	key := normalizeKey(raw)
	for idx, t := range CoffeeTypes {
		if key == string(t) || key == fmt.Sprint(idx+1) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBeverage, raw)
}

// Size — объём напитка.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// ParseSize принимает как полные названия, так и S/M/L.
func ParseSize(raw string) (Size, error) {
	switch normalizeKey(raw) {
	case "s", "small":
		return SizeSmall, nil
	case "m", "medium":
		return SizeMedium, nil
	case "l", "large":
		return SizeLarge, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSize, raw)
	}
}

// Coffee — собранный бариста напиток. Значение неизменяемо после Validate.
type Coffee struct {
	Name     string
	Type     CoffeeType
	Size     Size
	Milk     string
	AddOns   []string
	Takeaway bool
}

// Validate проверяет обязательные поля напитка.
func (c Coffee) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrCoffeeNameRequired
	}
	switch c.Size {
	case SizeSmall, SizeMedium, SizeLarge:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSize, c.Size)
	}
	return nil
}

// String возвращает подробное описание напитка.
func (c Coffee) String() string {
	addOns := "none"
	if len(c.AddOns) > 0 {
		addOns = strings.Join(c.AddOns, ", ")
	}
	return fmt.Sprintf("%s (%s, milk: %s, add-ons: %s, takeaway: %t)", c.Name, c.Size, c.Milk, addOns, c.Takeaway)
}
