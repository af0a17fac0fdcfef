package types

// DBType selects the backend for the vote attempt log and the preference store.
type DBType string

const (
	Postgres DBType = "postgres"
	SQLite   DBType = "sqlite"
	// None keeps preferences in memory and drops attempt records.
	None DBType = "none"
)

// Valid reports whether t names a supported backend. The empty value counts as None.
func (t DBType) Valid() bool {
	switch t {
	case Postgres, SQLite, None, "":
		return true
	}
	return false
}
