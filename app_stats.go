package main

import (
	"fmt"
)

// UpdateTables downloads the latest table snapshot into the local database.
// force discards the local copy first.
func (a *App) UpdateTables(force bool) string {
	if a.provider != nil {
		if _, err := a.provider.FetchVersion(a.ctx); err != nil {
			return fmt.Sprintf("Version check failed: %v", err)
		}
		return fmt.Sprintf("PostgreSQL tables at version %s (published with cmd/tablebuild)", a.provider.GetVersion())
	}
	if a.tableDB == nil {
		return "Table database not in use (source is " + a.cfg.Tables.Source + ")"
	}

	manifestURL := a.manifestURL()
	if manifestURL == "" {
		return "No manifest URL configured (set tables.manifest_url or TABLES_MANIFEST_URL)"
	}

	var err error
	if force {
		err = a.tableDB.ForceUpdate(manifestURL)
	} else {
		err = a.tableDB.CheckForUpdates(manifestURL)
	}
	if err != nil {
		return fmt.Sprintf("Update failed: %v", err)
	}

	if a.tableDB.HasData() {
		return fmt.Sprintf("Tables at version %s", a.tableDB.GetCurrentVersion())
	}
	return "Update completed but no data available"
}
