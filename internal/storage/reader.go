package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Load читает журнал сессии с диска.
func Load(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readBinary(f)
}

func readBinary(r io.Reader) (*Session, error) {
	// 1. Читаем заголовок целиком
	var header SessionFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return nil, fmt.Errorf("invalid magic")
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, Version1)
	}

	session := &Session{
		Seed:      header.Seed,
		StartedAt: header.StartedAt,
		Records:   make([]SessionRecord, header.RecordCount),
	}

	// 2. Читаем записи
	for i := 0; i < int(header.RecordCount); i++ {
		var rh RecordHeader
		if err := binary.Read(r, binary.LittleEndian, &rh); err != nil {
			return nil, fmt.Errorf("failed to read record %d header: %w", i, err)
		}

		rec := SessionRecord{
			Timestamp: rh.Timestamp,
			Event:     rh.Event,
		}
		if rh.PayloadLen > 0 {
			rec.Payload = make([]byte, rh.PayloadLen)
			if _, err := io.ReadFull(r, rec.Payload); err != nil {
				return nil, fmt.Errorf("failed to read record %d payload: %w", i, err)
			}
		}
		session.Records[i] = rec
	}

	return session, nil
}
