// Package menu собирает напитки по рецептам: реестр рецептов, запрос клиента и бариста.
package menu

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// Recipe задаёт значения напитка по умолчанию. Реестр отдаёт только копии.
type Recipe struct {
	Name          string      `yaml:"name"`
	DefaultSize   domain.Size `yaml:"default_size"`
	DefaultMilk   string      `yaml:"default_milk"`
	DefaultAddOns []string    `yaml:"default_add_ons"`
	// BasePriceMinor — цена среднего размера.
	BasePriceMinor int64 `yaml:"base_price_minor"`
}

// Clone возвращает независимую копию рецепта.
func (r Recipe) Clone() Recipe {
	clone := r
	clone.DefaultAddOns = append([]string(nil), r.DefaultAddOns...)
	return clone
}

// Registry хранит рецепты по видам напитков. Создаётся явно и передаётся зависимостям.
type Registry struct {
	recipes map[domain.CoffeeType]Recipe
}

// NewRegistry создаёт реестр из переданных рецептов.
func NewRegistry(recipes map[domain.CoffeeType]Recipe) (*Registry, error) {
	r := &Registry{recipes: make(map[domain.CoffeeType]Recipe, len(recipes))}
	for typ, recipe := range recipes {
		if err := r.Register(typ, recipe); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry возвращает стандартное меню.
func DefaultRegistry() *Registry {
	return &Registry{recipes: map[domain.CoffeeType]Recipe{
		domain.CoffeeTypeEspresso: {
			Name:           domain.CoffeeTypeEspresso.DisplayName(),
			DefaultSize:    domain.SizeSmall,
			DefaultMilk:    "None",
			BasePriceMinor: 250,
		},
		domain.CoffeeTypeLatte: {
			Name:           domain.CoffeeTypeLatte.DisplayName(),
			DefaultSize:    domain.SizeMedium,
			DefaultMilk:    "Oat",
			DefaultAddOns:  []string{"Vanilla Syrup"},
			BasePriceMinor: 350,
		},
		domain.CoffeeTypeCappuccino: {
			Name:           domain.CoffeeTypeCappuccino.DisplayName(),
			DefaultSize:    domain.SizeMedium,
			DefaultMilk:    "Whole",
			DefaultAddOns:  []string{"Cocoa Powder"},
			BasePriceMinor: 300,
		},
	}}
}

// Register добавляет или заменяет рецепт.
func (r *Registry) Register(typ domain.CoffeeType, recipe Recipe) error {
	if _, err := domain.ParseCoffeeType(string(typ)); err != nil {
		return err
	}
	if strings.TrimSpace(recipe.Name) == "" {
		return fmt.Errorf("recipe %s: %w", typ, domain.ErrCoffeeNameRequired)
	}
	if recipe.DefaultSize == "" {
		recipe.DefaultSize = domain.SizeMedium
	}
	if _, err := domain.ParseSize(string(recipe.DefaultSize)); err != nil {
		return fmt.Errorf("recipe %s: %w", typ, err)
	}
	if recipe.BasePriceMinor < 0 {
		return fmt.Errorf("recipe %s: %w", typ, domain.ErrPriceNegative)
	}
	r.recipes[typ] = recipe.Clone()
	return nil
}

// Lookup возвращает копию рецепта или ErrUnknownBeverage.
func (r *Registry) Lookup(typ domain.CoffeeType) (Recipe, error) {
	recipe, ok := r.recipes[typ]
	if !ok {
		return Recipe{}, fmt.Errorf("%w: no recipe registered for %q", domain.ErrUnknownBeverage, typ)
	}
	return recipe.Clone(), nil
}

// menuFile — формат YAML-файла меню.
type menuFile struct {
	Recipes map[string]Recipe `yaml:"recipes"`
}

// LoadRegistry читает YAML-файл меню поверх стандартных рецептов.
func LoadRegistry(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open menu file: %w", err)
	}
	defer file.Close()

	var cfg menuFile
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode menu file: %w", err)
	}

	registry := DefaultRegistry()
	for key, recipe := range cfg.Recipes {
		typ, err := domain.ParseCoffeeType(key)
		if err != nil {
			return nil, fmt.Errorf("menu file: %w", err)
		}
		if err := registry.Register(typ, recipe); err != nil {
			return nil, fmt.Errorf("menu file: %w", err)
		}
	}
	return registry, nil
}
