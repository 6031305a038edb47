package orders

const (
	TopicOrderFinalized  = "promo.order.finalized"
	TopicOrderSynced     = "promo.order.synced"
	TopicOrderSyncFailed = "promo.order.sync.failed"
)

// Partition key = order_id so all events of one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
