package domain

import "fmt"

// Snapshot is an immutable copy of a board, the only view agents get.
type Snapshot struct {
	Variant Variant `json:"variant"`
	Heights []uint8 `json:"heights"`
	Masks   []uint8 `json:"masks"`
}

const snapshotHeader = 3

// Encode lays the snapshot out for the sandbox:
// [columns, rows, connect, heights..., masks...].
func (s Snapshot) Encode() []byte {
	n := len(s.Heights)
	buf := make([]byte, snapshotHeader+2*n)
	buf[0] = byte(s.Variant.Columns)
	buf[1] = byte(s.Variant.Rows)
	buf[2] = byte(s.Variant.Connect)
	copy(buf[snapshotHeader:], s.Heights)
	copy(buf[snapshotHeader+n:], s.Masks)
	return buf
}

// DecodeSnapshot is the inverse of Encode. The variant name is not carried
// on the wire.
func DecodeSnapshot(buf []byte) (Snapshot, error) {
	if len(buf) < snapshotHeader {
		return Snapshot{}, fmt.Errorf("%w: %d bytes", ErrBadSnapshot, len(buf))
	}
	v := Variant{Name: "wire", Columns: int(buf[0]), Rows: int(buf[1]), Connect: int(buf[2])}
	if len(buf) != snapshotHeader+2*v.Columns {
		return Snapshot{}, fmt.Errorf("%w: want %d bytes for %d columns, got %d", ErrBadSnapshot, snapshotHeader+2*v.Columns, v.Columns, len(buf))
	}
	s := Snapshot{
		Variant: v,
		Heights: append([]uint8(nil), buf[snapshotHeader:snapshotHeader+v.Columns]...),
		Masks:   append([]uint8(nil), buf[snapshotHeader+v.Columns:]...),
	}
	return s, nil
}

// Board rebuilds a private, mutable board from the snapshot.
func (s Snapshot) Board() (*Board, error) {
	b, err := NewBoard(s.Variant)
	if err != nil {
		return nil, err
	}
	if len(s.Heights) != b.Width() || len(s.Masks) != b.Width() {
		return nil, fmt.Errorf("%w: %d heights and %d masks for %d columns", ErrBadSnapshot, len(s.Heights), len(s.Masks), b.Width())
	}
	for i := range b.columns {
		if int(s.Heights[i]) > b.Rows() {
			return nil, fmt.Errorf("%w: column %d height %d exceeds %d rows", ErrBadSnapshot, i, s.Heights[i], b.Rows())
		}
		b.columns[i] = Column{Mask: s.Masks[i] & b.full, Height: s.Heights[i]}
	}
	return b, nil
}

func (s Snapshot) Height(c int) int {
	if c < 0 || c >= len(s.Heights) {
		return 0
	}
	return int(s.Heights[c])
}
