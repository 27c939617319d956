package menu

import (
	"fmt"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// sizePercent — наценка к цене среднего размера.
var sizePercent = map[domain.Size]int64{
	domain.SizeSmall:  80,
	domain.SizeMedium: 100,
	domain.SizeLarge:  130,
}

// touch — особенность приготовления конкретного напитка.
type touch func(coffee *domain.Coffee, req Request)

var touches = map[domain.CoffeeType]touch{
	// Эспрессо остаётся без молока, если клиент его не просил.
	domain.CoffeeTypeEspresso: func(coffee *domain.Coffee, req Request) {
		if _, ok := req.Milk(); !ok {
			coffee.Milk = "None"
		}
	},
	domain.CoffeeTypeLatte: func(coffee *domain.Coffee, req Request) {
		if !req.IsTakeaway() {
			coffee.AddOns = append(coffee.AddOns, "Latte Art")
		}
	},
	domain.CoffeeTypeCappuccino: func(coffee *domain.Coffee, req Request) {
		if _, ok := req.Size(); req.IsTakeaway() && !ok {
			coffee.Size = domain.SizeLarge
		}
	},
}

// Barista собирает напитки по рецептам из реестра.
type Barista struct {
	registry *Registry
}

// NewBarista создаёт бариста; nil-реестр заменяется стандартным меню.
func NewBarista(registry *Registry) *Barista {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Barista{registry: registry}
}

// Brew готовит напиток и возвращает его вместе с базовой ценой.
func (b *Barista) Brew(typ domain.CoffeeType, req Request) (domain.Coffee, int64, error) {
	recipe, err := b.registry.Lookup(typ)
	if err != nil {
		return domain.Coffee{}, 0, err
	}

	coffee := domain.Coffee{
		Name:     recipe.Name,
		Type:     typ,
		Size:     recipe.DefaultSize,
		Milk:     recipe.DefaultMilk,
		AddOns:   recipe.DefaultAddOns,
		Takeaway: req.IsTakeaway(),
	}
	if size, ok := req.Size(); ok {
		coffee.Size = size
	}
	if milk, ok := req.Milk(); ok {
		coffee.Milk = milk
	}
	coffee.AddOns = append(coffee.AddOns, req.AddOns()...)

	if fn, ok := touches[typ]; ok {
		fn(&coffee, req)
	}
	if err := coffee.Validate(); err != nil {
		return domain.Coffee{}, 0, fmt.Errorf("brew %s: %w", typ, err)
	}

	// Наценка округляется до ближайшей копейки, половина вверх.
	return coffee, (recipe.BasePriceMinor*sizePercent[coffee.Size] + 50) / 100, nil
}

// Popular возвращает фирменные добавки для вида напитка.
func Popular(typ domain.CoffeeType) []domain.Modifier {
	switch typ {
	case domain.CoffeeTypeCappuccino:
		return []domain.Modifier{domain.WhippedCream(), domain.CaramelDrizzle()}
	case domain.CoffeeTypeLatte:
		return []domain.Modifier{domain.FlavorSyrup("Vanilla")}
	case domain.CoffeeTypeEspresso:
		return []domain.Modifier{domain.ExtraShot()}
	default:
		return nil
	}
}
