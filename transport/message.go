package transport

// Message is a single frame buffer.
//
// A message has exactly one logical owner. Buffers created with Allocate or
// NewMessage may be written through Data until they are handed to
// Socket.Send; after that the socket owns the bytes and the message is
// consumed: Data returns nil and a second Send fails. Buffers returned by
// Socket.Receive are wrapped views over received bytes and must be treated
// as read-only.
type Message struct {
	data     []byte
	writable bool
	consumed bool
}

// Allocate returns a writable message of the given size.
func Allocate(size int) *Message {
	if size < 0 {
		size = 0
	}
	return &Message{data: make([]byte, size), writable: true}
}

// NewMessage takes ownership of b and returns it as a writable message.
// The caller must not touch b afterwards.
func NewMessage(b []byte) *Message {
	if b == nil {
		b = []byte{}
	}
	return &Message{data: b, writable: true}
}

// Wrap returns a read-only message aliasing b.
func Wrap(b []byte) *Message {
	if b == nil {
		b = []byte{}
	}
	return &Message{data: b}
}

// Data returns the frame bytes, or nil once the message has been sent.
func (m *Message) Data() []byte {
	return m.data
}

// Size returns the frame length in bytes.
func (m *Message) Size() int {
	return len(m.data)
}

// Writable reports whether the holder may mutate Data.
func (m *Message) Writable() bool {
	return m.writable && !m.consumed
}

// Consumed reports whether ownership was already transferred to a socket.
func (m *Message) Consumed() bool {
	return m.consumed
}

// take transfers the bytes out of the message and marks it consumed.
func (m *Message) take() ([]byte, bool) {
	if m == nil || m.consumed {
		return nil, false
	}
	data := m.data
	m.data = nil
	m.writable = false
	m.consumed = true
	return data, true
}

// Frames flattens messages into raw frames without consuming them.
func Frames(msgs []*Message) [][]byte {
	frames := make([][]byte, len(msgs))
	for i, m := range msgs {
		frames[i] = m.Data()
	}
	return frames
}
