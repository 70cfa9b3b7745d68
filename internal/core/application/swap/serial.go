package swap

import (
	"crypto/rand"

	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

type serialSource struct{}

// NewSerialSource returns a source of base serials read from crypto/rand.
func NewSerialSource() ports.SerialSource {
	return serialSource{}
}

func (serialSource) NewSerial() (notes.Word, error) {
	buf := make([]byte, notes.WordSize)
	if _, err := rand.Read(buf); err != nil {
		return notes.ZeroWord, err
	}
	return notes.WordFromBytes(buf)
}
