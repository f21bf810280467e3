// Package migrations applies the embedded schema files for both
// storage backends. Files run in lexical order and must be idempotent.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed postgres/*.sql clickhouse/*.sql
var schemaFS embed.FS

// migrationFile is one embedded schema file, already read.
type migrationFile struct {
	name string
	sql  string
}

// loadMigrations returns the non-empty .sql files under dir in lexical
// order.
func loadMigrations(dir string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(schemaFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var files []migrationFile
	for _, name := range names {
		data, err := fs.ReadFile(schemaFS, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		files = append(files, migrationFile{name: name, sql: string(data)})
	}
	return files, nil
}
