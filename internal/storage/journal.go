package storage

import (
	"sync"
	"time"
)

// SessionRecord - одно входящее событие: время прихода, тип и сырой
// JSON-конверт как он был получен от клиента.
type SessionRecord struct {
	Timestamp int64 // unix millis
	Event     uint8
	Payload   []byte
}

// Session - журнал одной сессии координатора.
// Нужен для оффлайн-прогона (replay) и разбора инцидентов;
// ядро координатора об этом журнале ничего не знает.
type Session struct {
	Seed      int64
	StartedAt int64 // unix millis
	Records   []SessionRecord
}

// JournalService собирает записи в памяти и сохраняет их одним файлом.
type JournalService struct {
	SaveDir string

	mu      sync.Mutex
	session *Session
}

// NewJournalService открывает журнал новой сессии.
func NewJournalService(dir string, seed int64) *JournalService {
	return &JournalService{
		SaveDir: dir,
		session: &Session{
			Seed:      seed,
			StartedAt: time.Now().UnixMilli(),
		},
	}
}

// Record добавляет событие в журнал. Payload копируется:
// буфер чтения сокета переиспользуется адаптером.
func (s *JournalService) Record(event uint8, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.session.Records = append(s.session.Records, SessionRecord{
		Timestamp: time.Now().UnixMilli(),
		Event:     event,
		Payload:   cp,
	})
}

// Len возвращает количество записанных событий.
func (s *JournalService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.session.Records)
}
