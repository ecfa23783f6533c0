package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Row is one result tuple in column declaration order
type Row []any

// ExecSQL runs a non-parameterized statement, normally DDL
func (db *DB) ExecSQL(script string) error {
	if err := db.ready(); err != nil {
		return db.reject("exec", "", err)
	}

	if _, err := db.exec(script); err != nil {
		return db.fail("exec", "", err)
	}
	return nil
}

// AddData runs a parameterized INSERT and returns the new row id.
// In log mode a failed insert returns id 0 and a nil error.
func (db *DB) AddData(query string, values ...any) (int64, error) {
	return db.insert("", query, values...)
}

// insert is AddData with the target table known for logs and errors
func (db *DB) insert(table, query string, values ...any) (int64, error) {
	if err := db.ready(); err != nil {
		return 0, db.reject("insert", table, err)
	}

	result, err := db.exec(query, values...)
	if err != nil {
		return 0, db.fail("insert", table, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, db.fail("insert", table, err)
	}

	log.Debug().Str("table", table).Int64("id", id).Msg("Row inserted")
	return id, nil
}

// SelectAll returns every row of table in storage order
func (db *DB) SelectAll(table string) ([]Row, error) {
	if err := db.ready(); err != nil {
		return nil, db.reject("select", table, err)
	}
	if err := checkTable(table); err != nil {
		return nil, db.reject("select", table, err)
	}

	return db.selectRows(table, "SELECT * FROM "+table)
}

// SelectWhere returns the rows of table matching every term of filter
func (db *DB) SelectWhere(table string, filter Filter) ([]Row, error) {
	if err := db.ready(); err != nil {
		return nil, db.reject("select", table, err)
	}
	if err := checkTable(table); err != nil {
		return nil, db.reject("select", table, err)
	}

	where, values, err := filter.clause(table, " AND ")
	if err != nil {
		return nil, db.reject("select", table, err)
	}

	return db.selectRows(table, fmt.Sprintf("SELECT * FROM %s WHERE %s", table, where), values...)
}

func (db *DB) selectRows(table, query string, args ...any) ([]Row, error) {
	rows, err := db.query(query, args...)
	if err != nil {
		return nil, db.fail("select", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, db.fail("select", table, err)
	}

	result := make([]Row, 0)
	for rows.Next() {
		row := make(Row, len(cols))
		dest := make([]any, len(cols))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, db.fail("select", table, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, db.fail("select", table, err)
	}

	return result, nil
}

// Update sets the columns in fields on the row of table whose id is id
func (db *DB) Update(table string, id int64, fields Filter) error {
	if err := db.ready(); err != nil {
		return db.reject("update", table, err)
	}
	if err := checkTable(table); err != nil {
		return db.reject("update", table, err)
	}

	set, values, err := fields.clause(table, ", ")
	if err != nil {
		return db.reject("update", table, err)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, set)
	result, err := db.exec(query, append(values, id)...)
	if err != nil {
		return db.fail("update", table, err)
	}

	affected, _ := result.RowsAffected()
	log.Info().
		Str("table", table).
		Int64("id", id).
		Strs("columns", fields.Columns()).
		Int64("rows", affected).
		Msg("Row updated")
	return nil
}

// DeleteAll removes every row from table. The table itself stays.
func (db *DB) DeleteAll(table string) error {
	if err := db.ready(); err != nil {
		return db.reject("delete", table, err)
	}
	if err := checkTable(table); err != nil {
		return db.reject("delete", table, err)
	}

	result, err := db.exec("DELETE FROM " + table)
	if err != nil {
		return db.fail("delete", table, err)
	}

	affected, _ := result.RowsAffected()
	log.Info().Str("table", table).Int64("rows", affected).Msg("Deleted all rows")
	return nil
}

// DeleteWhere removes the rows of table matching every term of filter.
// Deleting rows that are already gone is not an error.
func (db *DB) DeleteWhere(table string, filter Filter) error {
	if err := db.ready(); err != nil {
		return db.reject("delete", table, err)
	}
	if err := checkTable(table); err != nil {
		return db.reject("delete", table, err)
	}

	where, values, err := filter.clause(table, " AND ")
	if err != nil {
		return db.reject("delete", table, err)
	}

	result, err := db.exec(fmt.Sprintf("DELETE FROM %s WHERE %s", table, where), values...)
	if err != nil {
		return db.fail("delete", table, err)
	}

	affected, _ := result.RowsAffected()
	log.Info().Str("table", table).Int64("rows", affected).Msg("Deleted selected rows")
	return nil
}

// Count returns the number of rows in table
func (db *DB) Count(table string) (int64, error) {
	if err := db.ready(); err != nil {
		return 0, db.reject("count", table, err)
	}
	if err := checkTable(table); err != nil {
		return 0, db.reject("count", table, err)
	}

	var count int64
	if err := db.queryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		return 0, db.fail("count", table, err)
	}
	return count, nil
}
