// Package repository define los contratos de datos del bridge.
//
// Las implementaciones viven en internal/store/adapters/ (memory, pg, sqlite).
//
//	flow / users / session / settings
//	              │
//	              ▼
//	   domain/repository (interfaces)
//	              │
//	    ┌─────────┼─────────┐
//	    ▼         ▼         ▼
//	 memory       pg      sqlite
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
package repository
