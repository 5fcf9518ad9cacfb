package query

import "fmt"

// Condition represents a WHERE clause condition.
// Implementations must generate SQL fragments and parameter maps
// using Spanner's named parameter format (@paramName).
type Condition interface {
	// SQL returns the SQL fragment and parameter map for this condition.
	// paramIndex is used to generate unique parameter names (@p0, @p1, etc.)
	SQL(paramIndex int) (string, map[string]interface{})
}

// cmpCondition implements a binary comparison (field <op> value).
type cmpCondition struct {
	field string
	op    string
	value interface{}
}

// Eq creates a WHERE condition for equality comparison.
// Example: Eq("status", "active") generates "status = @p0"
func Eq(field string, value interface{}) Condition {
	return &cmpCondition{field: field, op: "=", value: value}
}

// Lte creates a "field <= value" condition.
func Lte(field string, value interface{}) Condition {
	return &cmpCondition{field: field, op: "<=", value: value}
}

// Lt creates a "field < value" condition.
func Lt(field string, value interface{}) Condition {
	return &cmpCondition{field: field, op: "<", value: value}
}

// SQL generates the SQL fragment for the comparison.
func (c *cmpCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	sql := fmt.Sprintf("%s %s @%s", c.field, c.op, paramName)
	return sql, map[string]interface{}{paramName: c.value}
}

// inCondition implements membership in an array parameter.
type inCondition struct {
	field  string
	values interface{}
}

// In creates a WHERE condition matching any element of values, which must
// be a slice Spanner can bind as an ARRAY.
// Example: In("status", []string{"new", "processing"}) generates "status IN UNNEST(@p0)"
func In(field string, values interface{}) Condition {
	return &inCondition{field: field, values: values}
}

// SQL generates the SQL fragment for the membership test.
func (c *inCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	sql := fmt.Sprintf("%s IN UNNEST(@%s)", c.field, paramName)
	return sql, map[string]interface{}{paramName: c.values}
}
