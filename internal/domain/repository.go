package domain

// OrderStore описывает хранилище заказов стойки. Неизвестные идентификаторы
// не приводят к ошибкам: операции над ними логируются и ничего не меняют.
type OrderStore interface {
	// Place выделяет следующий идентификатор и сохраняет заказ в статусе placed.
	Place(order OrderComponent) string
	// Remove удаляет запись безусловно (используется при отмене размещения).
	Remove(id string)
	// Cancel переводит существующий заказ в статус cancelled.
	Cancel(id string)
	// Restore возвращает ранее снятую запись под тем же идентификатором.
	Restore(id string, entry OrderEntry)
	// UpdateStatus меняет статус существующего заказа.
	UpdateStatus(id string, status OrderStatus)
	Status(id string) (OrderStatus, bool)
	Entry(id string) (OrderEntry, bool)
	// List возвращает все записи по возрастанию идентификатора.
	List() []OrderRecord
	Len() int
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}
