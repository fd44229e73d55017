package siat

import "sync"

// sequence asigna números de factura estrictamente crecientes. El número lo
// posee la pasarela, nunca el motor de ventas: aunque dos envíos lleguen en
// paralelo, cada factura autorizada recibe un número único y mayor al anterior.
type sequence struct {
	mu   sync.Mutex
	last int64
}

func newSequence(start int64) *sequence {
	return &sequence{last: start}
}

// next devuelve el siguiente número de la serie.
func (s *sequence) next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// peek devuelve el número que asignaría next sin consumirlo. El caller debe
// serializar peek/next con su propio candado para que la serie no tenga huecos.
func (s *sequence) peek() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last + 1
}
