package database

// Order status codes used by the demo and the API
const (
	OrderStatusStarted = "started"
	OrderStatusDone    = "done"
)

// InsertOrderSQL inserts one order; values are cafe_id, table_label,
// contents, status, start_date, end_date
const InsertOrderSQL = `
	INSERT INTO orders (cafe_id, table_label, contents, status, start_date, end_date)
	VALUES (?, ?, ?, ?, ?, ?)`

// Order is the insert tuple for the orders table. Empty text fields bind as
// NULL; only Contents may be NULL in the schema.
type Order struct {
	CafeID     int64  `json:"cafe_id"`
	TableLabel string `json:"table_label"`
	Contents   string `json:"contents"`
	Status     string `json:"status"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// Values returns the positional arguments for InsertOrderSQL
func (o Order) Values() []any {
	return []any{
		o.CafeID,
		nullIfEmpty(o.TableLabel),
		nullIfEmpty(o.Contents),
		nullIfEmpty(o.Status),
		nullIfEmpty(o.StartDate),
		nullIfEmpty(o.EndDate),
	}
}

// InsertOrder adds an order and returns its id. The referenced cafe must exist.
func (db *DB) InsertOrder(o Order) (int64, error) {
	return db.insert(TableOrders, InsertOrderSQL, o.Values()...)
}
