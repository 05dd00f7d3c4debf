package window

// Key identifies a keyboard key the engine reacts to. Unmapped keys are
// dropped at the glfw boundary.
type Key uint32

const (
	KeyEscape Key = iota
	KeySpace
	KeyR
	KeyP
)

func (k Key) String() string {
	switch k {
	case KeyEscape:
		return "escape"
	case KeySpace:
		return "space"
	case KeyR:
		return "r"
	case KeyP:
		return "p"
	}

	return "unknown"
}

// MouseButton identifies a mouse button, numbered like glfw.
type MouseButton uint32

// KeysState tracks pressed keys plus the edges since the last tick.
type KeysState struct {
	Pressed      map[Key]bool
	JustPressed  map[Key]bool
	JustReleased map[Key]bool
}

func (k *KeysState) press(key Key) {
	setTrue(&k.Pressed, key)
	setTrue(&k.JustPressed, key)
}

func (k *KeysState) release(key Key) {
	setFalse(&k.Pressed, key)
	setTrue(&k.JustReleased, key)
}

func (k *KeysState) nextTick() {
	clear(k.JustPressed)
	clear(k.JustReleased)
}

// MouseState tracks the cursor and button edges since the last tick.
type MouseState struct {
	CursorX, CursorY float32

	Pressed      map[MouseButton]bool
	JustPressed  map[MouseButton]bool
	JustReleased map[MouseButton]bool
}

func (m *MouseState) press(button MouseButton) {
	setTrue(&m.Pressed, button)
	setTrue(&m.JustPressed, button)
}

func (m *MouseState) release(button MouseButton) {
	setFalse(&m.Pressed, button)
	setTrue(&m.JustReleased, button)
}

func (m *MouseState) position(x, y float32) {
	m.CursorX = x
	m.CursorY = y
}

func (m *MouseState) nextTick() {
	clear(m.JustPressed)
	clear(m.JustReleased)
}

// InputState is the polled input snapshot handed to the frame loop each
// tick.
type InputState struct {
	Keys  KeysState
	Mouse MouseState
}

func (s *InputState) nextTick() {
	s.Keys.nextTick()
	s.Mouse.nextTick()
}

func setTrue[K comparable](m *map[K]bool, key K) {
	if *m == nil {
		*m = map[K]bool{}
	}

	(*m)[key] = true
}

func setFalse[K comparable](m *map[K]bool, key K) {
	if *m == nil {
		*m = map[K]bool{}
	}

	(*m)[key] = false
}
