package domain

import (
	"errors"
	"strings"
)

var (
	// Ошибка неизвестного вида напитка.
	ErrUnknownBeverage = errors.New("unknown beverage")
	// Ошибка неизвестного размера.
	ErrUnknownSize = errors.New("unknown size")
	// Ошибка неизвестной добавки.
	ErrUnknownModifier = errors.New("unknown modifier")
	// Ошибка неизвестного статуса заказа.
	ErrUnknownStatus = errors.New("unknown order status")
	// Ошибка пустого названия напитка при сборке.
	ErrCoffeeNameRequired = errors.New("coffee name must be provided")
	// Ошибка сиропа без вкуса.
	ErrFlavorRequired = errors.New("syrup flavor is required")
	// Ошибка пустого названия комбо.
	ErrComboNameRequired = errors.New("combo name is required")
	// Ошибка скидки вне допустимого диапазона.
	ErrDiscountOutOfRange = errors.New("combo discount must be within 0..50 percent")
	// Ошибка комбо, которое содержало бы само себя.
	ErrComboCycle = errors.New("combo cannot contain itself")
	// Ошибка отрицательной цены.
	ErrPriceNegative = errors.New("price must be non-negative")
	// ErrOrderNotFound возвращается фасадом, если заказ не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNotPayable — оплатить можно только заказ в статусе placed.
	ErrOrderNotPayable = errors.New("order is not awaiting payment")
	// ErrOrderRequired — фасаду передан пустой заказ.
	ErrOrderRequired = errors.New("order must be provided")
	// ErrNothingToUndo — история пуста.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo — стек отменённых команд пуст.
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrListenerExists — слушатель с таким именем уже подписан.
	ErrListenerExists = errors.New("listener already subscribed")
	// ErrListenerNoCapability — слушатель не реализует ни одного обработчика.
	ErrListenerNoCapability = errors.New("listener handles no order events")
	// ErrNoPaymentMethod — способ оплаты не выбран.
	ErrNoPaymentMethod = errors.New("no payment method selected")
	// ErrInsufficientCash — наличных меньше, чем сумма к оплате.
	ErrInsufficientCash = errors.New("insufficient cash")
	// ErrInsufficientPoints — баллов лояльности не хватает.
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
	// ErrCardInvalid — карта не прошла валидацию.
	ErrCardInvalid = errors.New("credit card validation failed")
	// ErrPaymentAmountNegative — отрицательная сумма платежа.
	ErrPaymentAmountNegative = errors.New("payment amount must be non-negative")
	// ErrOutboxMessageNotFound — сообщение outbox не найдено.
	ErrOutboxMessageNotFound = errors.New("outbox message not found")
)

// IsValidationError сообщает, относится ли ошибка к ошибкам сборки заказа.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrUnknownBeverage,
		ErrUnknownSize,
		ErrUnknownModifier,
		ErrUnknownStatus,
		ErrCoffeeNameRequired,
		ErrFlavorRequired,
		ErrComboNameRequired,
		ErrDiscountOutOfRange,
		ErrComboCycle,
		ErrPriceNegative,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsPaymentDeclined сообщает, отклонён ли платёж по бизнес-причине (можно повторить другим способом).
func IsPaymentDeclined(err error) bool {
	return errors.Is(err, ErrInsufficientCash) ||
		errors.Is(err, ErrInsufficientPoints) ||
		errors.Is(err, ErrCardInvalid)
}

func normalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
