package mqtt

import "log"

// DefaultBufferSize is how many messages are kept while the broker is away.
const DefaultBufferSize = 256

// pendingMsg is a serialized message waiting for the broker to come back.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO that drops the oldest message when full.
// Not safe for concurrent use; the publisher's mutex guards it.
type outbox struct {
	msgs    []pendingMsg
	next    int // write position
	n       int
	dropped int // since the last drain
}

func newOutbox(capacity int) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &outbox{msgs: make([]pendingMsg, capacity)}
}

func (o *outbox) push(m pendingMsg) {
	size := len(o.msgs)
	if o.n == size {
		if o.dropped == 0 {
			log.Printf("mqtt: offline buffer full (%d messages), dropping oldest", size)
		}
		o.dropped++
	} else {
		o.n++
	}
	o.msgs[o.next] = m
	o.next = (o.next + 1) % size
}

// drain returns the buffered messages oldest first, and how many were
// dropped since the previous drain, then empties the outbox.
func (o *outbox) drain() ([]pendingMsg, int) {
	dropped := o.dropped
	o.dropped = 0
	if o.n == 0 {
		return nil, dropped
	}

	size := len(o.msgs)
	out := make([]pendingMsg, 0, o.n)
	first := (o.next - o.n + size) % size
	for i := 0; i < o.n; i++ {
		j := (first + i) % size
		out = append(out, o.msgs[j])
		o.msgs[j] = pendingMsg{}
	}
	o.n = 0
	o.next = 0
	return out, dropped
}

func (o *outbox) len() int {
	return o.n
}
