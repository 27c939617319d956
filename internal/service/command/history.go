package command

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// Действия над командами для метрик.
const (
	ActionExecute = "execute"
	ActionUndo    = "undo"
	ActionRedo    = "redo"
)

// Record — запись истории: команда и момент её последнего применения.
type Record struct {
	ID          string
	Kind        Kind
	Description string
	AppliedAt   time.Time
	command     Command
}

// Command возвращает команду записи.
func (r Record) Command() Command { return r.command }

// Metrics учитывает операции истории.
type Metrics interface {
	RecordCommand(kind, action string)
}

// History хранит применённые и отменённые команды. Новая команда очищает стек redo.
type History struct {
	mu      sync.Mutex
	applied []Record
	undone  []Record

	logger  *log.Entry
	metrics Metrics
	now     func() time.Time
}

// NewHistory создаёт пустую историю. metrics может быть nil.
func NewHistory(logger *log.Entry, metrics Metrics) *History {
	if logger == nil {
		logger = log.WithField("component", "command-history")
	}
	return &History{
		logger:  logger,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Execute применяет команду и кладёт её в историю.
func (h *History) Execute(cmd Command) Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	cmd.Apply()
	rec := Record{
		ID:          uuid.NewString(),
		Kind:        cmd.Kind(),
		Description: cmd.Describe(),
		AppliedAt:   h.now(),
		command:     cmd,
	}
	h.applied = append(h.applied, rec)
	h.undone = nil

	h.observe(rec, ActionExecute)
	return rec
}

// Undo отменяет последнюю применённую команду.
func (h *History) Undo() (Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.applied) == 0 {
		h.logger.Info("nothing to undo")
		return Record{}, domain.ErrNothingToUndo
	}

	rec := h.applied[len(h.applied)-1]
	h.applied = h.applied[:len(h.applied)-1]
	rec.command.Undo()
	h.undone = append(h.undone, rec)

	h.observe(rec, ActionUndo)
	return rec, nil
}

// Redo повторно применяет последнюю отменённую команду.
// Повтор PlaceOrder выдаёт заказу новый номер, а следующие за ним в стеке команды
// по-прежнему адресованы старому номеру и становятся пустыми операциями.
func (h *History) Redo() (Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undone) == 0 {
		h.logger.Info("nothing to redo")
		return Record{}, domain.ErrNothingToRedo
	}

	rec := h.undone[len(h.undone)-1]
	h.undone = h.undone[:len(h.undone)-1]
	rec.command.Apply()
	rec.Description = rec.command.Describe()
	rec.AppliedAt = h.now()
	h.applied = append(h.applied, rec)

	h.observe(rec, ActionRedo)
	return rec, nil
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.applied) > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undone) > 0
}

// Records возвращает применённые команды от старых к новым.
func (h *History) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Record(nil), h.applied...)
}

// Len возвращает число применённых команд.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.applied)
}

func (h *History) observe(rec Record, action string) {
	h.logger.WithFields(log.Fields{
		"command": rec.Kind,
		"action":  action,
		"record":  rec.ID,
	}).Debug(rec.Description)
	if h.metrics != nil {
		h.metrics.RecordCommand(string(rec.Kind), action)
	}
}
