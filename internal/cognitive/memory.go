package cognitive

import (
	"sync"
	"time"
)

// Experience - одна запись опыта агента.
type Experience struct {
	Event     string    `json:"event"`
	Location  string    `json:"location,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Memory - память одного агента: список опыта и счетчик посещений точек.
// Живет только в процессе; никакой долговременной истории.
type Memory struct {
	AgentID     string
	Experiences []Experience
	Visits      map[string]int // location_name -> сколько раз дошел
}

// Context - срез памяти, который получает планирование.
type Context struct {
	Visits map[string]int
	Recent []Experience // последние записи, новые в конце
}

// recentWindow - сколько последних записей отдавать в контекст.
const recentWindow = 3

// Registry хранит память всех агентов. Отдельно от контроллера окружения:
// окружение - физика, память - когниция, и чистятся они вместе только
// при удалении агента.
type Registry struct {
	mu       sync.RWMutex
	memories map[string]*Memory
}

func NewRegistry() *Registry {
	return &Registry{memories: make(map[string]*Memory)}
}

// Record добавляет запись опыта и, если это прибытие в точку,
// инкрементирует счетчик посещений.
func (r *Registry) Record(agentID string, exp Experience) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.memories[agentID]
	if m == nil {
		m = &Memory{AgentID: agentID, Visits: make(map[string]int)}
		r.memories[agentID] = m
	}
	if exp.Timestamp.IsZero() {
		exp.Timestamp = time.Now()
	}
	m.Experiences = append(m.Experiences, exp)
	if exp.Location != "" {
		m.Visits[exp.Location]++
	}
}

// RetrieveContext возвращает копию контекста агента.
func (r *Registry) RetrieveContext(agentID string) Context {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.memories[agentID]
	if m == nil {
		return Context{Visits: map[string]int{}}
	}

	visits := make(map[string]int, len(m.Visits))
	for k, v := range m.Visits {
		visits[k] = v
	}

	start := len(m.Experiences) - recentWindow
	if start < 0 {
		start = 0
	}
	recent := make([]Experience, len(m.Experiences)-start)
	copy(recent, m.Experiences[start:])

	return Context{Visits: visits, Recent: recent}
}

// Visits возвращает копию счетчиков посещений (для API статуса).
func (r *Registry) Visits(agentID string) map[string]int {
	return r.RetrieveContext(agentID).Visits
}

// FirstVisit сообщает, впервые ли агент в этой точке.
func (r *Registry) FirstVisit(agentID, location string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.memories[agentID]
	if m == nil {
		return true
	}
	return m.Visits[location] <= 1
}

// Forget стирает память агента. Вызывается при удалении агента.
func (r *Registry) Forget(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memories, agentID)
}
