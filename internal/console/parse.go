package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
	"github.com/vladislavdragonenkov/coffeeshop/internal/menu"
)

var (
	errUsage       = errors.New("usage")
	errInvalidCash = errors.New("invalid amount")
)

// drink — разобранный заказ одного напитка.
type drink struct {
	typ       domain.CoffeeType
	request   menu.Request
	modifiers []domain.Modifier
}

// parseDrink разбирает "<type> [size=S|M|L] [milk=<m>] [addon=<a>] [takeaway] [+shot] [+syrup=<f>] ...".
func parseDrink(args []string) (drink, error) {
	if len(args) == 0 {
		return drink{}, fmt.Errorf("%w: <type> [options]", errUsage)
	}
	typ, err := domain.ParseCoffeeType(args[0])
	if err != nil {
		return drink{}, err
	}

	var (
		options   []menu.RequestOption
		modifiers []domain.Modifier
	)
	for _, arg := range args[1:] {
		if strings.HasPrefix(arg, "+") {
			m, err := domain.ParseModifier(arg)
			if err != nil {
				return drink{}, err
			}
			modifiers = append(modifiers, m)
			continue
		}

		key, value, _ := strings.Cut(arg, "=")
		switch strings.ToLower(key) {
		case "size":
			size, err := domain.ParseSize(value)
			if err != nil {
				return drink{}, err
			}
			options = append(options, menu.WithSize(size))
		case "milk":
			options = append(options, menu.WithMilk(strings.ReplaceAll(value, "_", " ")))
		case "addon":
			options = append(options, menu.WithAddOns(strings.ReplaceAll(value, "_", " ")))
		case "takeaway":
			options = append(options, menu.Takeaway())
		default:
			return drink{}, fmt.Errorf("%w: unknown option %q", errUsage, arg)
		}
	}
	return drink{typ: typ, request: menu.NewRequest(options...), modifiers: modifiers}, nil
}

// parseMoney переводит "4.5", "$4.50" или "12" в центы.
func parseMoney(raw string) (int64, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "$")
	whole, frac, hasFrac := strings.Cut(raw, ".")
	if whole == "" && !hasFrac {
		return 0, fmt.Errorf("%w: %q", errInvalidCash, raw)
	}

	var dollars int64
	if whole != "" {
		v, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %q", errInvalidCash, raw)
		}
		dollars = v
	}

	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("%w: %q", errInvalidCash, raw)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		v, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %q", errInvalidCash, raw)
		}
		cents = v
	}
	return dollars*100 + cents, nil
}

// parseDiscount принимает "10" и "10%".
func parseDiscount(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrDiscountOutOfRange, raw)
	}
	return v, nil
}
