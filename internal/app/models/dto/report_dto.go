package dto

// CreateReportRequest flags a reflection or comment for moderator review
type CreateReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}
