package storage

import (
	"errors"

	"github.com/google/uuid"
)

type (
	IDGenerator interface {
		Generate() []byte
	}

	uuidGenerator struct{}
)

var ErrNotEnoughBytesInGenerator = errors.New("id generator must return at least 16 bytes")

func (uuidGenerator) Generate() []byte {
	id := uuid.New()
	return id[:]
}

func generateUUID(generator IDGenerator) (uuid.UUID, error) {
	bytes := generator.Generate()

	if len(bytes) < 16 {
		return uuid.Nil, ErrNotEnoughBytesInGenerator
	}

	return uuid.FromBytes(bytes[:16])
}
