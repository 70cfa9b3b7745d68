package notes

import "fmt"

const (
	// SwapUseCaseID is the use case discriminator of swap order tags.
	SwapUseCaseID = uint16(0)

	maxUseCaseID      = uint16(1)<<14 - 1
	publicUseCaseTag  = uint32(0x80000000)
	localAnyTag       = uint32(0xc0000000)
	executionModeMask = uint32(0xc0000000)
)

// NoteTag is a coarse routing label attached to every note, letting clients
// subscribe to relevant notes without scanning all of them.
type NoteTag uint32

// ForPublicUseCase builds the tag of a public note for the given use case.
func ForPublicUseCase(useCase, payload uint16) (NoteTag, error) {
	if useCase > maxUseCaseID {
		return 0, fmt.Errorf("use case id %d exceeds %d", useCase, maxUseCaseID)
	}
	return NoteTag(publicUseCaseTag | uint32(useCase)<<16 | uint32(payload)), nil
}

// DeriveTag returns the discovery tag of a swap order offering assets issued
// by offered and requesting assets issued by requested. Only 8 bits of each
// id survive, so matches must be re-checked against the full ids.
func DeriveTag(offered, requested AccountID) NoteTag {
	payload := uint16(offered.TagByte())<<8 | uint16(requested.TagByte())
	tag, _ := ForPublicUseCase(SwapUseCaseID, payload)
	return tag
}

// AccountTag returns the tag of notes addressed to the given account. It
// carries the 14 most significant bits of the id.
func AccountTag(id AccountID) NoteTag {
	return NoteTag(uint32(uint64(id)>>34)&0xffff0000 | localAnyTag)
}

// IsPublicUseCase returns whether the tag routes a public use case note.
func (t NoteTag) IsPublicUseCase() bool {
	return uint32(t)&executionModeMask == publicUseCaseTag
}

// UseCase returns the use case discriminator of a use case tag.
func (t NoteTag) UseCase() uint16 {
	return uint16(uint32(t)>>16) & maxUseCaseID
}

// Payload returns the 16 bit payload of a use case tag.
func (t NoteTag) Payload() uint16 {
	return uint16(t)
}

func (t NoteTag) String() string {
	return fmt.Sprintf("%d", uint32(t))
}
