package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatements(t *testing.T) {
	script := `-- header comment
CREATE TABLE a (id INT); -- trailing
INSERT INTO a VALUES ('x;y');

CREATE INDEX i ON a (id)`
	stmts := splitStatements(script)
	assert.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE a (id INT)", stmts[0])
	assert.Equal(t, "INSERT INTO a VALUES ('x;y')", stmts[1])
	assert.Equal(t, "CREATE INDEX i ON a (id)", stmts[2])
}

func TestEmbeddedSchemas(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres"} {
		_, err := migrationFS.ReadFile("migration/" + driver + "/" + LatestSchemaFileName)
		assert.NoError(t, err, driver)
	}
}
