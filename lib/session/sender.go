package session

import (
	"io"
	"sync"

	"smppgw/core/lib/pdu"
)

// StreamSender writes PDUs to a byte stream, one at a time.
type StreamSender struct {
	mutex sync.Mutex
	w     io.Writer
}

func NewStreamSender(w io.Writer) *StreamSender {
	return &StreamSender{w: w}
}

func (s *StreamSender) Send(header pdu.Header, body []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return pdu.WriteTo(s.w, header, body)
}

// NewStream creates a Session that writes to rw.
// Pass the same rw to Serve to read from it.
func NewStream(rw io.ReadWriter, opts ...Option) *Session {
	return New(NewStreamSender(rw), opts...)
}
