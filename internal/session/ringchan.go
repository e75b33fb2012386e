package session

// ringChannel is a bounded channel with overwrite-oldest semantics: senders
// never block, slow consumers lose the oldest events first. Status and scan
// event fan-out must never stall the notification path, so dropping stale
// events is the correct failure mode.
type ringChannel[T any] struct {
	ch chan T
}

func newRingChannel[T any](capacity int) *ringChannel[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &ringChannel[T]{ch: make(chan T, capacity)}
}

// C returns the receive side; consumers range over it like a normal channel.
func (rc *ringChannel[T]) C() <-chan T {
	return rc.ch
}

// Send inserts an item, discarding the oldest buffered one if full.
func (rc *ringChannel[T]) Send(v T) {
	for {
		select {
		case rc.ch <- v:
			return
		default:
			select {
			case <-rc.ch: // drop oldest, retry
			default:
			}
		}
	}
}
