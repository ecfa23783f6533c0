package database

// nullIfEmpty maps "" to a SQL NULL so required columns reject missing values
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
