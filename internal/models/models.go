package models

import (
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusPublished:
		return true
	}
	return false
}

type ChangeType string

const (
	ChangeModify ChangeType = "modify"
	ChangeDelete ChangeType = "delete"
)

func (c ChangeType) Valid() bool {
	return c == ChangeModify || c == ChangeDelete
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"size:50;unique;not null"  json:"username"`
	PasswordHash string `gorm:"size:255;not null"        json:"-"`
	FullName     string `gorm:"size:100;not null"        json:"full_name"`
	IsAdmin      bool   `gorm:"default:false"            json:"is_admin"`
}

type Article struct {
	ArticleUUID   string    `gorm:"size:36;primaryKey"      json:"article_uuid"`
	ArticleNumber string    `gorm:"size:20;unique;not null" json:"article_number"`
	Title         string    `gorm:"size:200;not null"       json:"title"`
	Content       string    `gorm:"type:text"               json:"content"`
	IsActive      bool      `gorm:"default:true"            json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Knowledge struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ArticleNumber    string     `gorm:"size:20;index;not null"   json:"article_number"`
	ChangeType       ChangeType `gorm:"size:10;not null"         json:"change_type"`
	Title            string     `gorm:"size:200;not null"        json:"title"`
	InfoCategory     string     `gorm:"size:100"                 json:"info_category"`
	Keywords         string     `gorm:"size:500"                 json:"keywords"`
	Importance       bool       `gorm:"default:false"            json:"importance"`
	Target           string     `gorm:"size:200"                 json:"target"`
	OpenPublishStart *time.Time `json:"open_publish_start"`
	OpenPublishEnd   *time.Time `json:"open_publish_end"`
	Question         string     `gorm:"type:text"                json:"question"`
	Answer           string     `gorm:"type:text"                json:"answer"`
	AddComments      string     `gorm:"type:text"                json:"add_comments"`
	Remarks          string     `gorm:"type:text"                json:"remarks"`
	Status           Status     `gorm:"size:10;index;not null;default:draft" json:"status"`
	CreatedBy        uint       `gorm:"index;not null"           json:"created_by"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	ApprovedAt       *time.Time `json:"approved_at"`
	ApprovedBy       *uint      `json:"approved_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Author   *User `gorm:"foreignKey:CreatedBy"  json:"author,omitempty"`
	Approver *User `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	Token     string    `gorm:"unique;not null" json:"token"`
	UserID    uint      `gorm:"index;not null"  json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"        json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type BlacklistedToken struct {
	JTI       string    `gorm:"size:36;primaryKey" json:"jti"`
	ExpiresAt time.Time `gorm:"index;not null"     json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
