package model

import "time"

// Stats is a read-only rollup over current entity state for the admin
// dashboard. Computed at request time, no caching.
type Stats struct {
	Users              int     `json:"users"`
	Messages           int     `json:"messages"`
	UnreadMessages     int     `json:"unread_messages"`
	PendingReports     int     `json:"pending_reports"`
	UsersToday         int     `json:"users_today"`
	MessagesToday      int     `json:"messages_today"`
	ReadRate           float64 `json:"read_rate"`
	SuspendedUsers     int     `json:"suspended_users"`
	CreditsOutstanding int     `json:"credits_outstanding"`
	DeletedMessages    int     `json:"deleted_messages"`
	RemindersSent      int     `json:"reminders_sent"`
	ReminderEligible   int     `json:"reminder_eligible"`
}

// RecentMessage is a message row in the admin overview. Content is omitted;
// admins see content only through reports.
type RecentMessage struct {
	ID             string    `json:"id"`
	SenderEmail    string    `json:"sender_email"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// AdminOverview is the admin console landing payload.
type AdminOverview struct {
	Stats          Stats           `json:"stats"`
	RecentUsers    []AdminUser     `json:"recent_users"`
	RecentMessages []RecentMessage `json:"recent_messages"`
	PendingReports []PendingReport `json:"pending_reports"`
}
