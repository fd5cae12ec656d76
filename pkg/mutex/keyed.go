// Package mutex: exclusión mutua por clave (un candado por emisor).
package mutex

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int // goroutines que tienen o esperan el candado
}

// KeyedMutex serializa el acceso por clave; claves distintas no se bloquean entre sí.
// El valor cero está listo para usarse. Las entradas sin uso se liberan en Unlock.
type KeyedMutex[K comparable] struct {
	mu    sync.Mutex
	table map[K]*entry
}

// Lock bloquea hasta obtener el candado de key.
func (m *KeyedMutex[K]) Lock(key K) {
	m.mu.Lock()
	if m.table == nil {
		m.table = make(map[K]*entry)
	}
	e, ok := m.table[key]
	if !ok {
		e = &entry{}
		m.table[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
}

// Unlock libera el candado de key. Igual que sync.Mutex, liberar una clave no bloqueada es un error de programación.
func (m *KeyedMutex[K]) Unlock(key K) {
	m.mu.Lock()
	e, ok := m.table[key]
	if !ok {
		m.mu.Unlock()
		panic("mutex: Unlock de una clave no bloqueada")
	}
	e.refs--
	if e.refs == 0 {
		delete(m.table, key)
	}
	m.mu.Unlock()

	e.mu.Unlock()
}

// WithLock ejecuta fn con el candado de key tomado.
func (m *KeyedMutex[K]) WithLock(key K, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

// Len cantidad de claves con candado tomado o en espera.
func (m *KeyedMutex[K]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.table)
}
