package logger

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance atomic.Pointer[zap.Logger]
)

// Init inicializa el logger singleton. Solo la primera llamada tiene efecto.
func Init(cfg Config) {
	once.Do(func() {
		instance.Store(build(cfg))
	})
}

// L retorna el logger singleton (dev/info si Init no fue llamado).
func L() *zap.Logger {
	if l := instance.Load(); l != nil {
		return l
	}
	Init(Config{Env: "dev", Level: "info"})
	return instance.Load()
}

// Replace cambia el singleton y retorna una función que restaura el anterior.
// Pensado para tests que necesitan observar logs (zaptest/observer).
func Replace(l *zap.Logger) (restore func()) {
	L() // asegura que once ya corrió
	prev := instance.Swap(l)
	return func() { instance.Store(prev) }
}

// Sync flushea buffers pendientes. defer en main.
func Sync() error {
	if l := instance.Load(); l != nil {
		return l.Sync()
	}
	return nil
}
