package datasource

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asksql/asksql-engine/pkg/models"
)

// SchemaDiscoverer reads table and column metadata from the target
// datasource. The result feeds both the /schema endpoint and the prompt
// given to the LLM.
type SchemaDiscoverer struct {
	pool *pgxpool.Pool
}

// NewSchemaDiscoverer creates a discoverer over an existing pool.
func NewSchemaDiscoverer(pool *pgxpool.Pool) *SchemaDiscoverer {
	return &SchemaDiscoverer{pool: pool}
}

// DiscoverSchema returns all user tables with their columns, excluding
// system schemas.
func (d *SchemaDiscoverer) DiscoverSchema(ctx context.Context) (*models.SchemaResponse, error) {
	const query = `
		SELECT c.table_name, c.column_name, c.data_type
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE t.table_type = 'BASE TABLE'
		  AND c.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY c.table_name, c.ordinal_position
	`

	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query schema: %w", err)
	}
	defer rows.Close()

	var (
		tables  []models.TableSchema
		current *models.TableSchema
	)

	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return nil, fmt.Errorf("scan schema row: %w", err)
		}

		if current == nil || current.Name != tableName {
			tables = append(tables, models.TableSchema{Name: tableName})
			current = &tables[len(tables)-1]
		}
		current.Columns = append(current.Columns, models.ColumnSchema{
			Name: columnName,
			Type: dataType,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema rows: %w", err)
	}

	return &models.SchemaResponse{Tables: tables}, nil
}

// SchemaText renders a schema in the compact one-line-per-table form the
// prompt uses.
func SchemaText(schema *models.SchemaResponse) string {
	var b strings.Builder
	for i, table := range schema.Tables {
		if i > 0 {
			b.WriteByte('\n')
		}
		names := make([]string, len(table.Columns))
		for j, col := range table.Columns {
			names[j] = col.Name
		}
		fmt.Fprintf(&b, "Table: %s | Columns: %s", table.Name, strings.Join(names, ", "))
	}
	return b.String()
}
