package store

// Subscribe returns a channel that receives the latest Snapshot after every
// state change, starting with the current one. Delivery is conflating: a slow
// reader skips intermediate snapshots and only sees the newest. cancel stops
// delivery and closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.observers[id]; ok {
			delete(s.observers, id)
			close(ch)
		}
	}
	return ch, cancel
}

// publishLocked must be called with s.mu held.
func (s *Store) publishLocked() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.observers {
		// Replace an unread snapshot with the newer one.
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
