package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabasePath(t *testing.T) {
	db, err := parseDatabasePath("projects/test-project/instances/dev-instance/databases/billing-db")
	require.NoError(t, err)
	assert.Equal(t, "dev-instance", db.InstanceID)
	assert.Equal(t, "projects/test-project/instances/dev-instance", db.Instance())
	assert.Equal(t, "projects/test-project/instances/dev-instance/databases/billing-db", db.String())

	for _, bad := range []string{"", "billing-db", "projects/p/instances//databases/d", "projects/p/databases/d/instances/i"} {
		_, err := parseDatabasePath(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitDDLStatements(t *testing.T) {
	got := splitDDLStatements("-- catalog\nCREATE TABLE a (\n  id STRING(36),\n) PRIMARY KEY (id);\n\nCREATE INDEX idx ON a(id);\n")
	assert.Equal(t, []string{
		"CREATE TABLE a (\nid STRING(36),\n) PRIMARY KEY (id)",
		"CREATE INDEX idx ON a(id)",
	}, got)
}

func TestSplitDDLStatements_Schema(t *testing.T) {
	content, err := os.ReadFile("../../migrations/001_billing_schema.sql")
	require.NoError(t, err)

	statements := splitDDLStatements(string(content))
	require.NotEmpty(t, statements)
	assert.Contains(t, statements[0], "CREATE TABLE services")
	for _, s := range statements {
		assert.NotContains(t, s, ";")
	}
}
