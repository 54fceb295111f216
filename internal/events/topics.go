package events

// Topic constants for domain events emitted by the sales service.
const (
	TopicSaleCreated      = "sale.created"
	TopicSaleModified     = "sale.modified"
	TopicSaleCanceled     = "sale.canceled"
	TopicSaleItemCanceled = "sale.item_canceled"
)
