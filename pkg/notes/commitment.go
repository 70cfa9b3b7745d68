package notes

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// InputsBlockSize is the number of elements absorbed per hashing block.
// Inputs are zero-padded to a multiple of it before being committed to.
const InputsBlockSize = 8

var (
	// SwapScriptRoot identifies the partially fillable swap (order) note script.
	SwapScriptRoot = hashLabel("spark/note/swap-partial/v1")
	// PaymentScriptRoot identifies the pay-to-id (payment) note script.
	PaymentScriptRoot = hashLabel("spark/note/pay-to-id/v1")
)

// Merge hashes two words into one.
func Merge(a, b Word) Word {
	h := blake3.New()
	//nolint
	h.Write(a.Bytes())
	//nolint
	h.Write(b.Bytes())
	return digestToWord(h)
}

// HashElements hashes a sequence of elements zero-padded to a multiple of
// InputsBlockSize. The number of elements is absorbed first, so trailing
// zeros are not ambiguous.
func HashElements(elems []uint64) Word {
	padded := len(elems)
	if rem := padded % InputsBlockSize; rem != 0 || padded == 0 {
		padded += InputsBlockSize - rem
	}

	buf := make([]byte, 8+padded*8)
	binary.LittleEndian.PutUint64(buf, uint64(len(elems)))
	for i, e := range elems {
		binary.LittleEndian.PutUint64(buf[8+i*8:], e)
	}

	h := blake3.New()
	//nolint
	h.Write(buf)
	return digestToWord(h)
}

// InputsCommitment commits to the structured inputs of a note.
func InputsCommitment(inputs []uint64) Word {
	return HashElements(inputs)
}

// Recipient returns the recipient commitment of a note, that is
// hash(hash(serial, script), inputs_commitment). It identifies what a note
// does and who is authorized to consume it.
func Recipient(serial, script Word, inputs []uint64) Word {
	return Merge(Merge(serial, script), InputsCommitment(inputs))
}

// AssetWord encodes a fungible asset as [amount, 0, 0, faucet id].
func AssetWord(faucet AccountID, amount uint64) Word {
	return Word{amount, 0, 0, uint64(faucet)}
}

// AssetsCommitment commits to the assets carried by a note.
func AssetsCommitment(assets ...Word) Word {
	elems := make([]uint64, 0, len(assets)*4)
	for _, a := range assets {
		elems = append(elems, a[:]...)
	}
	return HashElements(elems)
}

// NoteID binds the recipient of a note to the assets it carries.
func NoteID(recipient, assetsCommitment Word) Word {
	return Merge(recipient, assetsCommitment)
}

// DeriveChainSerial returns the serial number of the payment note emitted by
// the k-th fill of an order whose chain is rooted at base.
func DeriveChainSerial(base Word, k uint64) Word {
	return Merge(base, Word{k, 0, 0, 0})
}

func hashLabel(label string) Word {
	h := blake3.New()
	//nolint
	h.WriteString(label)
	return digestToWord(h)
}

func digestToWord(h *blake3.Hasher) Word {
	var sum [WordSize]byte
	h.Sum(sum[:0])
	w, _ := WordFromBytes(sum[:])
	return w
}
