package notes

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// WordSize is the number of bytes of a Word.
const WordSize = 32

// Word is a 4-element value used for serial numbers, commitments and ids.
type Word [4]uint64

// ZeroWord is the all-zero Word.
var ZeroWord = Word{}

// NewWord returns a Word with the given elements, missing ones set to zero.
func NewWord(elems ...uint64) Word {
	var w Word
	copy(w[:], elems)
	return w
}

// WordFromBytes decodes a Word from its 32-byte little-endian encoding.
func WordFromBytes(buf []byte) (Word, error) {
	if len(buf) != WordSize {
		return ZeroWord, fmt.Errorf(
			"invalid word length: got %d, expected %d", len(buf), WordSize,
		)
	}
	var w Word
	for i := range w {
		w[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
	return w, nil
}

// ParseWord decodes a Word from its hex encoding, with or without 0x prefix.
func ParseWord(s string) (Word, error) {
	if len(s) > 1 && s[:2] == "0x" {
		s = s[2:]
	}
	buf, err := hex.DecodeString(s)
	if err != nil {
		return ZeroWord, fmt.Errorf("invalid word hex: %w", err)
	}
	return WordFromBytes(buf)
}

// Bytes returns the 32-byte little-endian encoding of the word.
func (w Word) Bytes() []byte {
	buf := make([]byte, WordSize)
	for i, e := range w {
		binary.LittleEndian.PutUint64(buf[i*8:], e)
	}
	return buf
}

// IsZero returns whether all elements are zero.
func (w Word) IsZero() bool {
	return w == ZeroWord
}

// String returns the 0x-prefixed hex encoding of the word.
func (w Word) String() string {
	return "0x" + hex.EncodeToString(w.Bytes())
}

// MarshalText implements encoding.TextMarshaler so that words are stored and
// published in their hex form.
func (w Word) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Word) UnmarshalText(text []byte) error {
	parsed, err := ParseWord(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
