package datasource

import (
	"testing"

	"github.com/asksql/asksql-engine/pkg/models"
)

func TestSchemaText(t *testing.T) {
	schema := &models.SchemaResponse{
		Tables: []models.TableSchema{
			{
				Name: "players",
				Columns: []models.ColumnSchema{
					{Name: "name", Type: "text"},
					{Name: "overall", Type: "integer"},
				},
			},
			{
				Name: "clubs",
				Columns: []models.ColumnSchema{
					{Name: "club_name", Type: "text"},
				},
			},
		},
	}

	want := "Table: players | Columns: name, overall\nTable: clubs | Columns: club_name"
	if got := SchemaText(schema); got != want {
		t.Errorf("SchemaText = %q, want %q", got, want)
	}
}

func TestSchemaText_Empty(t *testing.T) {
	if got := SchemaText(&models.SchemaResponse{}); got != "" {
		t.Errorf("SchemaText on empty schema = %q, want empty", got)
	}
}
