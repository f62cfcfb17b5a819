package store

import (
	"context"
	"fmt"
	"io/fs"
)

// Migrate aplica las migraciones de fsys sobre conn si la conexión es SQL.
// Para conexiones sin SQL (memory) no hace nada y retorna (nil, nil).
func Migrate(ctx context.Context, conn AdapterConnection, fsys fs.FS) (*MigrationResult, error) {
	mc, ok := conn.(MigratableConnection)
	if !ok {
		return nil, nil
	}
	if fsys == nil {
		return nil, fmt.Errorf("migrate: no migrations for driver %q", conn.Name())
	}
	return NewMigrator(fsys, ".").Run(ctx, mc.DB(), conn.Name())
}
