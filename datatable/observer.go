package datatable

// Subscribe registers an observer invoked with the new state snapshot after
// every transition. The returned function removes the observer again.
//
// Observers replace framework reactivity: a rendering layer subscribes once
// and refreshes from the snapshot it receives. Notification order between
// observers is unspecified.
func (m *Model[T]) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// emit notifies callbacks and observers about an applied transition. It runs
// outside the state lock, and each callee is panic-isolated: a failing
// observer cannot roll back the transition or starve the others.
func (m *Model[T]) emit(st State, extras ...func()) {
	for _, fn := range extras {
		m.safeCall(fn)
	}
	if m.cb.OnStateChange != nil {
		m.safeCall(func() { m.cb.OnStateChange(st) })
	}

	m.mu.Lock()
	obs := make([]func(State), 0, len(m.observers))
	for _, fn := range m.observers {
		obs = append(obs, fn)
	}
	m.mu.Unlock()

	for _, fn := range obs {
		fn := fn
		m.safeCall(func() { fn(st) })
	}
}

// safeCall runs a callback and converts a panic into a log line.
func (m *Model[T]) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("table observer panicked", "panic", r)
		}
	}()
	fn()
}
