package models

// ColumnSchema describes one column of a datasource table.
type ColumnSchema struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableSchema describes one datasource table.
type TableSchema struct {
	Name    string         `json:"name"`
	Columns []ColumnSchema `json:"columns"`
}

// SchemaResponse is the structured schema of the target datasource.
type SchemaResponse struct {
	Tables []TableSchema `json:"tables"`
}
