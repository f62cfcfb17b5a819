// Package migrations embeds SQL migration files per driver.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// ForDriver retorna las migraciones del driver ("postgres", "sqlite").
func ForDriver(driver string) (fs.FS, error) {
	switch driver {
	case "postgres", "sqlite":
		return fs.Sub(files, driver)
	default:
		return nil, fmt.Errorf("migrations: unknown driver %q", driver)
	}
}
