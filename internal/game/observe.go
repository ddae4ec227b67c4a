package game

// Subscribe streams board snapshots. The channel receives the current board
// immediately and the newest board after every mutation; a slow reader only
// misses intermediate states. cancel unsubscribes and closes the channel.
func (s *Service) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.snapshotLocked()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Close ends every subscription by closing its channel. Later calls to
// Subscribe return an already closed channel. The board stays readable.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// publishLocked replaces any unread snapshot with the current one.
// Only the publisher sends, under mu, so the drain always frees the slot.
func (s *Service) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
