package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/tariff-billing/internal/app/billing/repo"
	"github.com/light-bringer/tariff-billing/internal/models/m_client"
	"github.com/light-bringer/tariff-billing/internal/models/m_client_discount"
	"github.com/light-bringer/tariff-billing/internal/models/m_client_service"
	"github.com/light-bringer/tariff-billing/internal/models/m_discount"
	"github.com/light-bringer/tariff-billing/internal/models/m_order"
	"github.com/light-bringer/tariff-billing/internal/models/m_order_client_service"
	"github.com/light-bringer/tariff-billing/internal/models/m_outbox"
	"github.com/light-bringer/tariff-billing/internal/models/m_price_entry"
	"github.com/light-bringer/tariff-billing/internal/models/m_service"
	"github.com/light-bringer/tariff-billing/internal/pkg/committer"
)

// billingTables lists every table, children first.
var billingTables = []string{
	m_order_client_service.TableName,
	m_order.TableName,
	m_client_discount.TableName,
	m_client_service.TableName,
	m_client.TableName,
	m_discount.TableName,
	m_price_entry.TableName,
	m_service.TableName,
	m_outbox.TableName,
}

// SpannerTestDB returns the emulator database used by integration tests.
func SpannerTestDB() string {
	if db := os.Getenv("SPANNER_TEST_DATABASE"); db != "" {
		return db
	}
	return "projects/test-project/instances/test-instance/databases/billing-test"
}

// SetupSpanner connects to the emulator and empties every table. The test
// is skipped when no emulator is configured.
func SetupSpanner(t *testing.T) *spanner.Client {
	t.Helper()

	if os.Getenv("SPANNER_EMULATOR_HOST") == "" {
		t.Skip("SPANNER_EMULATOR_HOST is not set")
	}

	client, err := spanner.NewClient(context.Background(), SpannerTestDB())
	require.NoError(t, err, "failed to create Spanner client")

	CleanDatabase(t, client)
	t.Cleanup(func() {
		CleanDatabase(t, client)
		client.Close()
	})
	return client
}

// NewSpannerEnv creates an environment backed by the emulator. Store is nil.
func NewSpannerEnv(t *testing.T) (*Env, *spanner.Client) {
	t.Helper()

	client := SetupSpanner(t)
	return newEnv(repo.NewRepositories(committer.NewCommitter(client))), client
}

// CleanDatabase truncates all billing tables.
func CleanDatabase(t *testing.T, client *spanner.Client) {
	t.Helper()

	mutations := make([]*spanner.Mutation, 0, len(billingTables))
	for _, table := range billingTables {
		mutations = append(mutations, spanner.Delete(table, spanner.AllKeys()))
	}
	_, err := client.Apply(context.Background(), mutations)
	require.NoError(t, err, "failed to clean database")
}

// AssertRowCount asserts the number of rows in a table.
func AssertRowCount(t *testing.T, client *spanner.Client, table string, expected int) {
	t.Helper()

	iter := client.Single().Query(context.Background(), spanner.Statement{
		SQL: fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
	})
	defer iter.Stop()

	row, err := iter.Next()
	require.NoError(t, err, "failed to query row count")

	var count int64
	require.NoError(t, row.Columns(&count), "failed to parse count")
	require.Equal(t, int64(expected), count, "unexpected row count in table %s", table)
}
