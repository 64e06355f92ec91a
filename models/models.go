package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Plans offered by the product, cheapest first.
var Plans = []string{"free", "starter", "pro", "enterprise"}

// PlanMRR is the list price per month for each plan in dollars.
var PlanMRR = map[string]float64{
	"free":       0,
	"starter":    29,
	"pro":        99,
	"enterprise": 499,
}

// User is a customer account.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Company    string    `json:"company"`
	Plan       string    `gorm:"index;default:'free'" json:"plan"`
	Country    string    `json:"country"`
	SignupDate time.Time `gorm:"index" json:"signup_date"`
	IsActive   bool      `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`

	Events        []Event        `json:"-"`
	Subscriptions []Subscription `json:"-"`
}

// Event is a single product-usage event emitted by a user.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	SessionID   string    `gorm:"size:36;index" json:"session_id"`
	EventType   string    `gorm:"index;not null" json:"event_type"`
	FeatureName string    `json:"feature_name"`
	OccurredAt  time.Time `gorm:"index" json:"occurred_at"`
}

// Subscription is a billing subscription held by a user.
type Subscription struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	Plan         string     `gorm:"not null" json:"plan"`
	Status       string     `gorm:"index;not null" json:"status"`
	MRR          float64    `gorm:"column:mrr" json:"mrr"`
	BillingCycle string     `gorm:"default:'monthly'" json:"billing_cycle"`
	StartedAt    time.Time  `json:"started_at"`
	CanceledAt   *time.Time `json:"canceled_at,omitempty"`
}

// BeforeCreate GORM hook - normalize the email so the unique index is case-insensitive
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Plan == "" {
		u.Plan = "free"
	}
	return nil
}

// All returns the tables owned by the analytics schema, in creation order.
func All() []any {
	return []any{&User{}, &Event{}, &Subscription{}, &AppSetting{}}
}

// ColumnHints describes the meaning of columns whose values are not obvious
// from their names. Used when describing the schema to the language model.
var ColumnHints = map[string]map[string]string{
	"users": {
		"plan":        "one of free, starter, pro, enterprise",
		"signup_date": "when the account was created",
		"is_active":   "false once the user has churned",
	},
	"events": {
		"event_type":   "one of login, page_view, feature_used, export, invite_sent, upgrade, downgrade",
		"feature_name": "set when event_type is feature_used",
		"occurred_at":  "event timestamp",
	},
	"subscriptions": {
		"status":        "one of active, trialing, canceled, past_due",
		"mrr":           "monthly recurring revenue in US dollars",
		"billing_cycle": "monthly or annual",
		"canceled_at":   "NULL unless status is canceled",
	},
}
