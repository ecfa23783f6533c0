package database

// InsertCafeSQL inserts one cafe; values are name, start_date, end_date
const InsertCafeSQL = `
	INSERT INTO cafes (name, start_date, end_date)
	VALUES (?, ?, ?)`

// Cafe is the insert tuple for the cafes table.
// Dates are text timestamps ("2006-01-02 15:04:05"). Empty fields bind as
// NULL, so a missing name fails the column's NOT NULL constraint.
type Cafe struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Values returns the positional arguments for InsertCafeSQL
func (c Cafe) Values() []any {
	return []any{nullIfEmpty(c.Name), nullIfEmpty(c.StartDate), nullIfEmpty(c.EndDate)}
}

// InsertCafe adds a cafe and returns its id
func (db *DB) InsertCafe(c Cafe) (int64, error) {
	return db.insert(TableCafes, InsertCafeSQL, c.Values()...)
}
