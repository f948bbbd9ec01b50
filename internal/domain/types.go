package domain

import "fmt"

type PlayerID int

const (
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

// Other returns the opponent of p.
func (p PlayerID) Other() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

func (p PlayerID) String() string {
	return fmt.Sprintf("player %d", int(p))
}

const (
	MaxColumns = 16
	MaxRows    = 8 // column masks are uint8
	MinConnect = 2
)

// Variant is the board geometry a match is played on.
type Variant struct {
	Name    string `json:"name"`
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
	Connect int    `json:"connect"`
}

// Gravitrips is the same 7x6 connect-4 game as Classic under the name older
// guests were published against. It is kept as a catalog alias so those
// agents can be matched by the name they were built for.
var (
	Classic    = Variant{Name: "classic", Columns: 7, Rows: 6, Connect: 4}
	Gravitrips = Variant{Name: "gravitrips", Columns: 7, Rows: 6, Connect: 4}
)

func (v Variant) Validate() error {
	if v.Name == "" || len(v.Name) > 64 {
		return fmt.Errorf("%w: name must be 1..64 characters", ErrInvalidVariant)
	}
	if v.Columns < 1 || v.Columns > MaxColumns {
		return fmt.Errorf("%w: columns must be 1..%d, got %d", ErrInvalidVariant, MaxColumns, v.Columns)
	}
	if v.Rows < 1 || v.Rows > MaxRows {
		return fmt.Errorf("%w: rows must be 1..%d, got %d", ErrInvalidVariant, MaxRows, v.Rows)
	}
	if v.Connect < MinConnect || v.Connect > max(v.Columns, v.Rows) {
		return fmt.Errorf("%w: connect must be %d..%d, got %d", ErrInvalidVariant, MinConnect, max(v.Columns, v.Rows), v.Connect)
	}
	return nil
}

// Cells is the move cap of a match on this variant.
func (v Variant) Cells() int {
	return v.Columns * v.Rows
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrColumnInvalid  Error = "column index out of range"
	ErrColumnFull     Error = "column is full"
	ErrInvalidVariant Error = "invalid variant"
	ErrBadSnapshot    Error = "malformed board snapshot"
)
