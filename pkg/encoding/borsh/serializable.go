package borsh

// Serializable defines the canonical binary encoding/decoding interface.
// Implementations record errors on the passed Writer/Reader rather than
// returning them, so compound encoders read as straight-line code.
type Serializable interface {
	EncodeBorsh(*Writer)
	DecodeBorsh(*Reader)
}
