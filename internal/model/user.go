package model

import "time"

type User struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	PublicID  string    `gorm:"type:varchar(36);uniqueIndex:idx_user_public_id;not null" json:"publicId"`
	Nickname  string    `gorm:"type:varchar(50);not null" json:"nickname"`
	AvatarKey string    `gorm:"type:varchar(512)" json:"avatarKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
