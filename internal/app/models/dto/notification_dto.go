package dto

// SendNotificationRequest fans a notification out to a recipient set. The
// whole send is rejected if any recipient id does not resolve.
type SendNotificationRequest struct {
	Content      string  `json:"content" binding:"required"`
	RecipientIDs []int64 `json:"recipientIds" binding:"required,min=1"`
}

// MarkReadRequest sets the caller's per-recipient read flag
type MarkReadRequest struct {
	Read bool `json:"read"`
}
