package handlers

import (
	"math/rand"
	"time"

	"github.com/nworb999/night-salon/internal/cognitive"
	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/internal/environment"
)

// Context передает хендлеру всё состояние координатора.
// Передаем ссылки, чтобы хендлер мог менять состояние (мутировать данные).
type Context struct {
	Env      *environment.Controller
	Memories *cognitive.Registry

	// Rng принадлежит сервису и сидируется из конфига,
	// чтобы replay воспроизводил те же случайные решения.
	Rng *rand.Rand

	// Clock подменяется в тестах.
	Clock func() time.Time
}

// Now возвращает текущее время по часам контекста.
func (c Context) Now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// Result - результат обработки одного события.
// Хендлер НЕ пишет в сокет напрямую, он возвращает данные;
// отправка - забота адаптера.
type Result struct {
	// Commands - ноль или больше исходящих команд клиенту.
	// Для setup - по команде на каждого размещенного агента,
	// для location_reached - максимум одна.
	Commands []domain.MoveCommand
}

// HandlerFunc - это контракт для любого события (setup, location_reached, ...).
type HandlerFunc func(ctx Context, raw []byte) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}
