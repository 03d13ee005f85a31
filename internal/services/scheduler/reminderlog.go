package scheduler

import "sync"

// ReminderLog отмечает подписки, по которым напоминание уже отправлено,
// чтобы ежеминутный цикл не слал дубли. Хранится только в памяти:
// после перезапуска процесса напоминание может уйти повторно, это
// допустимо.
type ReminderLog struct {
	mu   sync.Mutex
	sent map[int64]struct{}
}

// NewReminderLog создает пустой журнал отправленных напоминаний.
func NewReminderLog() *ReminderLog {
	return &ReminderLog{
		sent: make(map[int64]struct{}),
	}
}

// Seen сообщает, было ли уже напоминание по подписке.
func (l *ReminderLog) Seen(subscriptionID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.sent[subscriptionID]
	return ok
}

// Mark отмечает подписку как обработанную.
func (l *ReminderLog) Mark(subscriptionID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent[subscriptionID] = struct{}{}
}

// Forget убирает отметку, например после продления подписки.
func (l *ReminderLog) Forget(subscriptionID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sent, subscriptionID)
}
