package domain

import "strings"

// Area - Внутренний числовой идентификатор зоны офиса.
// Клиент присылает зоны строками ("Cubicles", "WATER_COOLER"),
// мы конвертируем их один раз на границе протокола и дальше
// работаем только с этим типом.
type Area uint8

const (
	AreaUnknown Area = iota
	AreaHallway
	AreaConferenceRoom
	AreaWaterCooler
	AreaSmokingArea
	AreaCubicles
	AreaBathroom
)

// Маппинг для конвертации JSON -> Domain
var areaStringToArea = map[string]Area{
	"HALLWAY":         AreaHallway,
	"CONFERENCE_ROOM": AreaConferenceRoom,
	"WATER_COOLER":    AreaWaterCooler,
	"SMOKING_AREA":    AreaSmokingArea,
	"CUBICLES":        AreaCubicles,
	"BATHROOM":        AreaBathroom,
}

// Маппинг для логов Domain -> String
var areaToString = map[Area]string{
	AreaHallway:        "HALLWAY",
	AreaConferenceRoom: "CONFERENCE_ROOM",
	AreaWaterCooler:    "WATER_COOLER",
	AreaSmokingArea:    "SMOKING_AREA",
	AreaCubicles:       "CUBICLES",
	AreaBathroom:       "BATHROOM",
}

// AllAreas возвращает все известные зоны (без AreaUnknown).
// Используется контроллером для предварительного посева реестра.
func AllAreas() []Area {
	return []Area{
		AreaHallway,
		AreaConferenceRoom,
		AreaWaterCooler,
		AreaSmokingArea,
		AreaCubicles,
		AreaBathroom,
	}
}

// ParseArea конвертирует строку из JSON в Area.
// Принимает и "WaterCooler", и "WATER_COOLER", и "water_cooler".
func ParseArea(s string) Area {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if val, ok := areaStringToArea[upper]; ok {
		return val
	}
	// Пробуем CamelCase вариант ("WaterCooler" -> "WATER_COOLER")
	if val, ok := areaStringToArea[camelToSnakeUpper(s)]; ok {
		return val
	}
	return AreaUnknown
}

// String реализует интерфейс Stringer (для логов и fmt.Printf)
func (a Area) String() string {
	if val, ok := areaToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// camelToSnakeUpper превращает "WaterCooler" в "WATER_COOLER"
func camelToSnakeUpper(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := s[i-1]
			if prev >= 'a' && prev <= 'z' {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
