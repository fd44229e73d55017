package sales

import "sync"

// saleLocks serializa las operaciones que mutan una misma venta.
// Dos ventas distintas nunca se bloquean entre sí.
type saleLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSaleLocks() *saleLocks {
	return &saleLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire toma el candado de la venta y devuelve la función que lo libera.
func (l *saleLocks) acquire(saleID string) func() {
	l.mu.Lock()
	m, ok := l.locks[saleID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[saleID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
