package postgres

import (
	"io/fs"

	"github.com/pratik-mahalle/upscaler/migrations"
)

func migrationsFS() fs.FS {
	return migrations.Files
}
