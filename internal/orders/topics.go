package orders

const (
	TopicOrderCreated   = "order.created"
	TopicOrderPaid      = "order.paid"
	TopicOrderCancelled = "order.cancelled"
	TopicOrderStatus    = "order.status"
)

// Topics every order-event consumer subscribes to.
var Topics = []string{TopicOrderCreated, TopicOrderPaid, TopicOrderCancelled, TopicOrderStatus}

// Partition key = order_id so one order's events stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
