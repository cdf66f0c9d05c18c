package domain

// LocationID - каноничный идентификатор точки внутри зоны.
// Совпадает с именем, которое присылает клиент ("DESK_1", "STALL_2").
type LocationID string

func (id LocationID) String() string { return string(id) }

// Типы точек
type LocationType uint8

const (
	LocationTypeUnknown LocationType = iota
	LocationTypeSeat
	LocationTypeStanding
	LocationTypeDesk
	LocationTypeStall
)

var locationTypeToString = map[LocationType]string{
	LocationTypeSeat:     "seat",
	LocationTypeStanding: "standing area",
	LocationTypeDesk:     "desk",
	LocationTypeStall:    "stall",
}

func (t LocationType) String() string {
	if val, ok := locationTypeToString[t]; ok {
		return val
	}
	return "unknown"
}

// Vector3 - позиция в мире клиента. Мы её не интерпретируем,
// только храним и отдаем обратно.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Location - одна адресуемая точка внутри зоны.
// Инвариант: OccupiedBy либо пуст, либо содержит ровно один ID агента,
// который сейчас физически находится в этой точке.
type Location struct {
	ID          LocationID
	Name        string
	Type        LocationType
	OccupiedBy  string // ID агента; "" = свободно
	Coordinates *Vector3
}

// IsOccupied сообщает, занята ли точка кем-либо.
func (l *Location) IsOccupied() bool {
	return l.OccupiedBy != ""
}
