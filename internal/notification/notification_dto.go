package notification

type NotificationResponse struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	ActionURL *string `json:"action_url,omitempty"`
	Type      Type    `json:"type"`
	IsRead    bool    `json:"is_read"`
	CreatedAt string  `json:"created_at"`
	ReadAt    *string `json:"read_at,omitempty"`
}
