package entities

import (
	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:(uuid_generate_v4())" json:"id"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Username   string    `gorm:"uniqueIndex;not null" json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Password   string    `gorm:"not null" json:"-"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	IsVerified bool      `json:"is_verified"`

	Recipes []*Recipe `gorm:"foreignKey:AuthorID" json:"recipes,omitempty"`
	Timestamp
}

// Subscription records that Subscriber follows Target. One row per pair.
type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:(uuid_generate_v4())" json:"id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_target" json:"subscriber_id"`
	TargetID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_target" json:"target_id"`

	Subscriber *User `gorm:"foreignKey:SubscriberID" json:"-"`
	Target     *User `gorm:"foreignKey:TargetID" json:"-"`
	Timestamp
}
