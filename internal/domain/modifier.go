package domain

import (
	"fmt"
	"strings"
)

// ModifierKind — вид добавки к напитку.
type ModifierKind string

const (
	ModifierExtraShot      ModifierKind = "extra_shot"
	ModifierFlavorSyrup    ModifierKind = "flavor_syrup"
	ModifierWhippedCream   ModifierKind = "whipped_cream"
	ModifierCaramelDrizzle ModifierKind = "caramel_drizzle"
)

// Цены добавок в минимальных денежных единицах.
const (
	ExtraShotPriceMinor      int64 = 75
	FlavorSyrupPriceMinor    int64 = 60
	WhippedCreamPriceMinor   int64 = 50
	CaramelDrizzlePriceMinor int64 = 45
)

// Modifier — одна добавка. Flavor заполняется только для сиропа.
type Modifier struct {
	Kind   ModifierKind
	Flavor string
}

// ExtraShot, WhippedCream, CaramelDrizzle и FlavorSyrup создают добавки соответствующего вида.
func ExtraShot() Modifier      { return Modifier{Kind: ModifierExtraShot} }
func WhippedCream() Modifier   { return Modifier{Kind: ModifierWhippedCream} }
func CaramelDrizzle() Modifier { return Modifier{Kind: ModifierCaramelDrizzle} }

func FlavorSyrup(flavor string) Modifier {
	return Modifier{Kind: ModifierFlavorSyrup, Flavor: strings.TrimSpace(flavor)}
}

// Validate проверяет вид добавки и наличие вкуса у сиропа.
func (m Modifier) Validate() error {
	switch m.Kind {
	case ModifierExtraShot, ModifierWhippedCream, ModifierCaramelDrizzle:
		return nil
	case ModifierFlavorSyrup:
		if m.Flavor == "" {
			return ErrFlavorRequired
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownModifier, m.Kind)
	}
}

// PriceMinor возвращает стоимость добавки.
func (m Modifier) PriceMinor() int64 {
	switch m.Kind {
	case ModifierExtraShot:
		return ExtraShotPriceMinor
	case ModifierFlavorSyrup:
		return FlavorSyrupPriceMinor
	case ModifierWhippedCream:
		return WhippedCreamPriceMinor
	case ModifierCaramelDrizzle:
		return CaramelDrizzlePriceMinor
	default:
		return 0
	}
}

// Label возвращает название добавки для описания заказа.
func (m Modifier) Label() string {
	switch m.Kind {
	case ModifierExtraShot:
		return "Extra Shot"
	case ModifierFlavorSyrup:
		return m.Flavor + " Syrup"
	case ModifierWhippedCream:
		return "Whipped Cream"
	case ModifierCaramelDrizzle:
		return "Caramel Drizzle"
	default:
		return string(m.Kind)
	}
}

// ParseModifier разбирает добавку из консольного ввода: shot, cream, caramel, syrup=<flavor>.
func ParseModifier(raw string) (Modifier, error) {
	key, value, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(raw), "+"), "=")
	var m Modifier
	switch normalizeKey(key) {
	case "shot", "extra-shot", "extra_shot":
		m = ExtraShot()
	case "cream", "whipped-cream", "whipped_cream":
		m = WhippedCream()
	case "caramel", "caramel-drizzle", "caramel_drizzle":
		m = CaramelDrizzle()
	case "syrup", "flavor-syrup", "flavor_syrup":
		m = FlavorSyrup(value)
	default:
		return Modifier{}, fmt.Errorf("%w: %q", ErrUnknownModifier, raw)
	}
	if err := m.Validate(); err != nil {
		return Modifier{}, err
	}
	return m, nil
}

// ApplyModifiers сворачивает добавки слева направо поверх базовой цены и описания.
func ApplyModifiers(baseMinor int64, baseDescription string, modifiers []Modifier) (int64, string) {
	total := baseMinor
	var b strings.Builder
	b.WriteString(baseDescription)
	for _, m := range modifiers {
		total += m.PriceMinor()
		b.WriteString(" + ")
		b.WriteString(m.Label())
	}
	return total, b.String()
}
