package domain

// OrderStatus описывает жизненный цикл заказа на стойке.
type OrderStatus string

const (
	// OrderStatusPlaced — заказ принят и ждёт бариста.
	OrderStatusPlaced OrderStatus = "placed"
	// OrderStatusPreparing — бариста готовит напиток.
	OrderStatusPreparing OrderStatus = "preparing"
	// OrderStatusReady — заказ готов к выдаче.
	OrderStatusReady OrderStatus = "ready"
	// OrderStatusCompleted — заказ выдан клиенту.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderStatusTitles = map[OrderStatus]string{
	OrderStatusPlaced:    "Order Placed",
	OrderStatusPreparing: "Preparing",
	OrderStatusReady:     "Ready for Pickup",
	OrderStatusCompleted: "Completed",
	OrderStatusCancelled: "Cancelled",
}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusTitles[s]
	return ok
}

// Title возвращает человекочитаемое название статуса для вывода в консоль.
func (s OrderStatus) Title() string {
	if title, ok := orderStatusTitles[s]; ok {
		return title
	}
	return string(s)
}

// ParseOrderStatus разбирает статус, введённый оператором.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(normalizeKey(raw))
	if status == "canceled" {
		status = OrderStatusCancelled
	}
	if !status.Valid() {
		return "", ErrUnknownStatus
	}
	return status, nil
}

// OrderComponent — то, что можно заказать: одиночный напиток или комбо.
type OrderComponent interface {
	Description() string
	TotalMinor() int64
	ItemCount() int
	// Lines возвращает строки чека, по одной на позицию.
	Lines() []string
}

// OrderEntry связывает заказ с его текущим статусом.
type OrderEntry struct {
	Order  OrderComponent
	Status OrderStatus
}

// OrderRecord — снимок записи хранилища вместе с идентификатором.
type OrderRecord struct {
	ID    string
	Entry OrderEntry
}
