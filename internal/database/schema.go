package database

import (
	"fmt"
	"slices"
)

// Table names
const (
	TableCafes  = "cafes"
	TableOrders = "orders"
)

// CreateCafesTableSQL creates the cafes table if it is missing
const CreateCafesTableSQL = `
	-- cafes table
	CREATE TABLE IF NOT EXISTS cafes (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT
	)`

// CreateOrdersTableSQL creates the orders table if it is missing.
// cafe_id references cafes(id); the connection enables foreign key enforcement.
const CreateOrdersTableSQL = `
	-- orders table
	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		cafe_id INTEGER NOT NULL,
		table_label VARCHAR(250) NOT NULL,
		contents TEXT,
		status VARCHAR(15) NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		FOREIGN KEY (cafe_id) REFERENCES cafes (id)
	)`

// tableColumns is the identifier allow-list, in declaration order.
// Only names listed here are ever interpolated into statement text.
var tableColumns = map[string][]string{
	TableCafes:  {"id", "name", "start_date", "end_date"},
	TableOrders: {"id", "cafe_id", "table_label", "contents", "status", "start_date", "end_date"},
}

// Tables returns the known table names, parents first
func Tables() []string {
	return []string{TableCafes, TableOrders}
}

// Columns returns the columns of table in declaration order
func Columns(table string) ([]string, bool) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, false
	}
	return slices.Clone(cols), true
}

func checkTable(table string) error {
	if _, ok := tableColumns[table]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return nil
}

func checkColumn(table, column string) error {
	if !slices.Contains(tableColumns[table], column) {
		return fmt.Errorf("%w: %q in table %s", ErrUnknownColumn, column, table)
	}
	return nil
}

// EnsureSchema creates both tables if they do not exist yet
func (db *DB) EnsureSchema() error {
	for _, ddl := range []string{CreateCafesTableSQL, CreateOrdersTableSQL} {
		if err := db.ExecSQL(ddl); err != nil {
			return err
		}
	}
	return nil
}
