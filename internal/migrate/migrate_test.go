package migrate

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpSectionStopsAtDownMarker(t *testing.T) {
	content := "CREATE TABLE a (id int);\n-- +migrate Down\nDROP TABLE a;\n"
	up := UpSection(content)
	assert.Contains(t, up, "CREATE TABLE a")
	assert.NotContains(t, up, "DROP TABLE")
}

func TestStatementsSkipsComments(t *testing.T) {
	sqlText := `-- header
CREATE TABLE a (
	id int
);
-- another
INSERT INTO a VALUES (1);
SELECT 1`
	stmts := Statements(sqlText)
	require.Len(t, stmts, 3)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a ("))
	assert.Equal(t, "INSERT INTO a VALUES (1);\n", stmts[1])
	assert.Equal(t, "SELECT 1\n", stmts[2])
}

func TestInitMigrationParses(t *testing.T) {
	content, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)
	stmts := Statements(UpSection(string(content)))
	require.NotEmpty(t, stmts)
	joined := strings.Join(stmts, "")
	for _, table := range []string{"accounts", "titles", "copies", "loans", "purchases", "ratings", "comments", "audit_logs"} {
		assert.Contains(t, joined, "CREATE TABLE "+table, table)
	}
	assert.NotContains(t, joined, "DROP TABLE")
}
