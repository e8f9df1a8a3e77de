package entity

import "time"

type Project struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Status    string    `gorm:"not null;default:active"`
	CreatedBy string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type ProjectMember struct {
	ID        int64     `gorm:"primaryKey"`
	ProjectID string    `gorm:"not null;uniqueIndex:idx_project_user"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_project_user"`
	Role      string    `gorm:"not null;default:member"`
	JoinedAt  time.Time `gorm:"autoCreateTime"`
}
