package messages

// Message is the base interface for everything posted to the event loop.
type Message interface {
	Type() string
}

// MessageType constants for type identification
const (
	TypePointerDown  = "PointerDown"
	TypePointerMove  = "PointerMove"
	TypePointerUp    = "PointerUp"
	TypeWindowResize = "WindowResize"
	TypeWindowClose  = "WindowClose"
	TypeCopyFrame    = "CopyFrame"
	TypeNudge        = "Nudge"
	TypeSnapshot     = "Snapshot"
)

// PointerDown - left button pressed, screen coordinates
type PointerDown struct {
	X, Y int
}

func (m PointerDown) Type() string { return TypePointerDown }

// PointerMove - pointer moved, screen coordinates
type PointerMove struct {
	X, Y int
}

func (m PointerMove) Type() string { return TypePointerMove }

// PointerUp - left button released
type PointerUp struct {
	X, Y int
}

func (m PointerUp) Type() string { return TypePointerUp }

// WindowResize - the output terminal changed size
type WindowResize struct {
	Cols, Rows int
}

func (m WindowResize) Type() string { return TypeWindowResize }

// WindowClose - the output window is being torn down
type WindowClose struct {
	Reason string
}

func (m WindowClose) Type() string { return TypeWindowClose }

// CopyFrame - copy the last rendered mosaic to the clipboard as text
type CopyFrame struct {
	Source string // e.g., "key", "hotkey", "tray"
}

func (m CopyFrame) Type() string { return TypeCopyFrame }

// Nudge - move the region by a number of blocks, or grow it when Resize is set
type Nudge struct {
	Cols, Rows int
	Resize     bool
}

func (m Nudge) Type() string { return TypeNudge }

// Snapshot - ask for the last rendered mosaic as text. Reply must be buffered;
// an empty string means nothing has been rendered yet.
type Snapshot struct {
	Reply chan<- string
}

func (m Snapshot) Type() string { return TypeSnapshot }
