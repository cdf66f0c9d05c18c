package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	MagicHeader string = `NSJR` // 4 байта
	Version1    uint32 = 1
)

// SessionFileHeader — это точное представление заголовка файла в памяти.
// binary.Write умеет писать это целиком, так как тут нет слайсов и строк,
// только массивы и числа.
type SessionFileHeader struct {
	Magic       [4]byte // 4 байта
	Version     uint32  // 4 байта
	Seed        int64   // 8 байт
	StartedAt   int64   // 8 байт
	RecordCount int32   // 4 байта
}

// RecordHeader — заголовок каждой записи события.
type RecordHeader struct {
	Timestamp  int64 // 8
	Event      uint8 // 1
	_          [3]byte
	PayloadLen uint32 // 4; setup-конверт легко превышает 64К
}

// Save пишет журнал сессии на диск и возвращает путь к файлу.
func (s *JournalService) Save() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.SaveDir); os.IsNotExist(err) {
		if err := os.MkdirAll(s.SaveDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create journal dir: %w", err)
		}
	}

	filename := fmt.Sprintf("session_%d_%d.nsjr", s.session.Seed, s.session.StartedAt)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := writeBinary(f, s.session); err != nil {
		return "", err
	}
	return path, nil
}

func writeBinary(w io.Writer, s *Session) error {
	// 1. Глобальный заголовок
	header := SessionFileHeader{
		Version:     Version1,
		Seed:        s.Seed,
		StartedAt:   s.StartedAt,
		RecordCount: int32(len(s.Records)),
	}
	copy(header.Magic[:], MagicHeader)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// 2. Записи
	for _, rec := range s.Records {
		rh := RecordHeader{
			Timestamp:  rec.Timestamp,
			Event:      rec.Event,
			PayloadLen: uint32(len(rec.Payload)),
		}
		if err := binary.Write(w, binary.LittleEndian, &rh); err != nil {
			return err
		}
		if len(rec.Payload) > 0 {
			if _, err := w.Write(rec.Payload); err != nil {
				return err
			}
		}
	}

	return nil
}
