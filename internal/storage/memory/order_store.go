package memory

import (
	"sort"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// firstOrderNumber — значение счётчика до выдачи первого идентификатора.
const firstOrderNumber = 1000

// storedEntry хранит запись и порядковый номер для сортировки.
type storedEntry struct {
	entry domain.OrderEntry
	seq   int64
}

// orderStoreInMemory — in-memory хранилище заказов стойки.
type orderStoreInMemory struct {
	mu       sync.RWMutex
	items    map[string]storedEntry
	counter  int64
	notifier domain.Notifier
	logger   *log.Entry
}

// NewOrderStore создаёт хранилище. Уведомления уходят в notifier после снятия блокировки.
func NewOrderStore(notifier domain.Notifier, logger *log.Entry) domain.OrderStore {
	if notifier == nil {
		notifier = domain.NopNotifier{}
	}
	if logger == nil {
		logger = log.WithField("component", "order-store")
	}
	return &orderStoreInMemory{
		items:    make(map[string]storedEntry),
		counter:  firstOrderNumber,
		notifier: notifier,
		logger:   logger,
	}
}

// Place выдаёт следующий идентификатор и сохраняет заказ в статусе placed.
func (s *orderStoreInMemory) Place(order domain.OrderComponent) string {
	s.mu.Lock()
	s.counter++
	seq := s.counter
	id := strconv.FormatInt(seq, 10)
	s.items[id] = storedEntry{
		entry: domain.OrderEntry{Order: order, Status: domain.OrderStatusPlaced},
		seq:   seq,
	}
	s.mu.Unlock()

	s.logger.WithField("order_id", id).Debug("order placed")
	s.notifier.NotifyPlaced(id, order)
	return id
}

// Remove удаляет запись; уведомление об отмене уходит только если запись была.
func (s *orderStoreInMemory) Remove(id string) {
	s.mu.Lock()
	_, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()

	if !ok {
		s.logger.WithField("order_id", id).Warn("remove skipped: order not found")
		return
	}
	s.notifier.NotifyCancelled(id)
}

// Cancel переводит заказ в cancelled.
func (s *orderStoreInMemory) Cancel(id string) {
	s.mu.Lock()
	stored, ok := s.items[id]
	if ok {
		stored.entry.Status = domain.OrderStatusCancelled
		s.items[id] = stored
	}
	s.mu.Unlock()

	if !ok {
		s.logger.WithField("order_id", id).Warn("cancel skipped: order not found")
		return
	}
	s.notifier.NotifyCancelled(id)
}

// Restore возвращает запись в точности такой, какой она была снята.
func (s *orderStoreInMemory) Restore(id string, entry domain.OrderEntry) {
	if !entry.Status.Valid() {
		entry.Status = domain.OrderStatusPlaced
	}

	s.mu.Lock()
	seq := s.items[id].seq
	if seq == 0 {
		seq, _ = strconv.ParseInt(id, 10, 64)
	}
	s.items[id] = storedEntry{entry: entry, seq: seq}
	s.mu.Unlock()

	s.logger.WithFields(log.Fields{
		"order_id": id,
		"status":   entry.Status,
	}).Debug("order restored")
	s.notifier.NotifyRestored(id, entry.Order, entry.Status)
}

// UpdateStatus меняет статус и рассылает уведомление, соответствующее новому статусу.
// Переходы в placed и completed не уведомляются.
func (s *orderStoreInMemory) UpdateStatus(id string, status domain.OrderStatus) {
	s.mu.Lock()
	stored, ok := s.items[id]
	if ok {
		stored.entry.Status = status
		s.items[id] = stored
	}
	s.mu.Unlock()

	if !ok {
		s.logger.WithFields(log.Fields{
			"order_id": id,
			"status":   status,
		}).Warn("status update skipped: order not found")
		return
	}

	switch status {
	case domain.OrderStatusPreparing:
		s.notifier.NotifyPreparing(id)
	case domain.OrderStatusReady:
		s.notifier.NotifyReady(id)
	case domain.OrderStatusCancelled:
		s.notifier.NotifyCancelled(id)
	}
}

func (s *orderStoreInMemory) Status(id string) (domain.OrderStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.items[id]
	return stored.entry.Status, ok
}

func (s *orderStoreInMemory) Entry(id string) (domain.OrderEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.items[id]
	return stored.entry, ok
}

// List возвращает снимок всех записей по возрастанию идентификатора.
func (s *orderStoreInMemory) List() []domain.OrderRecord {
	s.mu.RLock()
	records := make([]domain.OrderRecord, 0, len(s.items))
	seqs := make(map[string]int64, len(s.items))
	for id, item := range s.items {
		records = append(records, domain.OrderRecord{ID: id, Entry: item.entry})
		seqs[id] = item.seq
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return seqs[records[i].ID] < seqs[records[j].ID] })
	return records
}

// Len возвращает число записей.
func (s *orderStoreInMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

var _ domain.OrderStore = (*orderStoreInMemory)(nil)
