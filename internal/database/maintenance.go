package database

import "fmt"

// HealthCheck runs a trivial query to confirm the connection is alive
func (db *DB) HealthCheck() error {
	if err := db.ready(); err != nil {
		return err
	}

	var result int
	if err := db.queryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Optimize runs SQLite's PRAGMA optimize to refresh planner stats.
func (db *DB) Optimize() error {
	if err := db.ready(); err != nil {
		return err
	}

	if _, err := db.exec("PRAGMA optimize"); err != nil {
		return fmt.Errorf("failed to optimize database: %w", err)
	}

	return nil
}

// Vacuum rebuilds the database file to reclaim unused space.
func (db *DB) Vacuum() error {
	if err := db.ready(); err != nil {
		return err
	}

	if _, err := db.exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}
