package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuilder_BasicSelect(t *testing.T) {
	stmt := From("client_services").
		Select("client_service_id", "client_id", "status").
		Build()

	assert.Equal(t, "SELECT client_service_id, client_id, status FROM client_services", stmt.SQL)
	assert.Empty(t, stmt.Params)
}

func TestBuilder_SelectAllColumns(t *testing.T) {
	stmt := From("orders").Build()

	assert.Equal(t, "SELECT * FROM orders", stmt.SQL)
}

func TestBuilder_Where(t *testing.T) {
	until := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	stmt := From("client_services").
		Select("client_service_id").
		Where(Eq("is_enabled", true), Eq("status", "active")).
		Where(Lte("end_at", until)).
		Build()

	assert.Equal(t, "SELECT client_service_id FROM client_services WHERE is_enabled = @p0 AND status = @p1 AND end_at <= @p2", stmt.SQL)
	assert.Equal(t, map[string]interface{}{
		"p0": true,
		"p1": "active",
		"p2": until,
	}, stmt.Params)
}

func TestBuilder_WhereNothing(t *testing.T) {
	stmt := From("orders").Select("order_id").Where().Build()

	assert.Equal(t, "SELECT order_id FROM orders", stmt.SQL)
}

func TestBuilder_InCondition(t *testing.T) {
	stmt := From("orders").
		Select("order_id").
		Where(Eq("client_id", "c1"), In("status", []string{"new", "processing"})).
		Build()

	assert.Equal(t, "SELECT order_id FROM orders WHERE client_id = @p0 AND status IN UNNEST(@p1)", stmt.SQL)
	assert.Equal(t, []string{"new", "processing"}, stmt.Params["p1"])
}

func TestBuilder_OrderAndLimit(t *testing.T) {
	stmt := From("outbox_events").
		Select("event_id", "payload").
		Where(Eq("status", "pending")).
		OrderBy("created_at", Asc).
		ThenBy("event_id", Desc).
		Limit(100).
		Build()

	assert.Equal(t, "SELECT event_id, payload FROM outbox_events WHERE status = @p0 ORDER BY created_at ASC, event_id DESC LIMIT @limit", stmt.SQL)
	assert.Equal(t, map[string]interface{}{
		"p0":    "pending",
		"limit": int64(100),
	}, stmt.Params)
}

func TestBuilder_OrderByResetsKeys(t *testing.T) {
	stmt := From("orders").
		Select("order_id").
		OrderBy("created_at", Asc).
		ThenBy("order_id", Asc).
		OrderBy("updated_at", Desc).
		Limit(0).
		Build()

	assert.Equal(t, "SELECT order_id FROM orders ORDER BY updated_at DESC", stmt.SQL)
	assert.NotContains(t, stmt.Params, "limit")
}

func TestBuilder_Immutability(t *testing.T) {
	base := From("price_entries").Select("price_entry_id").OrderBy("period_from", Asc)

	stmt1 := base.Where(Eq("service_id", "rooms")).Build()
	stmt2 := base.ThenBy("price_entry_id", Asc).Build()

	assert.Equal(t, "SELECT price_entry_id FROM price_entries WHERE service_id = @p0 ORDER BY period_from ASC", stmt1.SQL)
	assert.Equal(t, "SELECT price_entry_id FROM price_entries ORDER BY period_from ASC, price_entry_id ASC", stmt2.SQL)
	assert.Equal(t, "SELECT price_entry_id FROM price_entries ORDER BY period_from ASC", base.Build().SQL)
}

func TestConditions(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
		want string
	}{
		{"eq", Eq("status", "new"), "status = @p3"},
		{"lte", Lte("end_at", 1), "end_at <= @p3"},
		{"lt", Lt("processed_at", 1), "processed_at < @p3"},
		{"in", In("order_id", []string{"a"}), "order_id IN UNNEST(@p3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params := tt.cond.SQL(3)
			assert.Equal(t, tt.want, sql)
			assert.Len(t, params, 1)
			assert.Contains(t, params, "p3")
		})
	}
}
