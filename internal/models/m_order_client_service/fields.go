package m_order_client_service

// Field name constants for the order_client_services join table,
// interleaved in orders.
const (
	TableName = "order_client_services"

	OrderID         = "order_id"
	ClientServiceID = "client_service_id"
)

// Columns lists every column in table order.
var Columns = []string{OrderID, ClientServiceID}
