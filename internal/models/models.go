package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

const (
	DefaultAvatar   = "https://wow.zamimg.com/images/wow/icons/large/inv_misc_questionmark.jpg"
	DefaultImage    = "https://i.redd.it/g69r8e7y19m21.jpg"
	DefaultReadTime = "5 min"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents a blog account. PasswordHash never leaves the server.
type User struct {
	BaseModel
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Avatar       string    `json:"avatar"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null"`
	UpdatedAt    time.Time `json:"-" gorm:"autoUpdateTime"`
}

// BeforeCreate fills in defaults before the ULID is assigned
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Avatar == "" {
		u.Avatar = DefaultAvatar
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	return u.BaseModel.BeforeCreate(tx)
}

// Post is a blog article written by an author
type Post struct {
	BaseModel
	Title     string    `json:"title" gorm:"size:100;not null"`
	Excerpt   string    `json:"excerpt" gorm:"size:200;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	AuthorID  string    `json:"authorId" gorm:"type:varchar(26);not null;index"`
	Category  string    `json:"category" gorm:"not null;index"`
	Image     string    `json:"image"`
	ReadTime  string    `json:"readTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// Relationships
	Author   User      `json:"author,omitzero" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate applies post defaults
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.Image == "" {
		p.Image = DefaultImage
	}
	if p.ReadTime == "" {
		p.ReadTime = DefaultReadTime
	}
	return p.BaseModel.BeforeCreate(tx)
}

// Comment belongs to a post; Likes mirrors the number of CommentLike rows
type Comment struct {
	BaseModel
	PostID   string `json:"postId" gorm:"type:varchar(26);not null;index"`
	AuthorID string `json:"authorId" gorm:"type:varchar(26);not null;index"`
	Content  string `json:"content" gorm:"type:text;not null"`
	Likes    int    `json:"likes" gorm:"not null;default:0"`

	// Relationships
	Author  User          `json:"author,omitzero" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	LikedBy []CommentLike `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
}

// CommentLike records that a user liked a comment. The composite key makes a second like impossible.
type CommentLike struct {
	CommentID string    `gorm:"primaryKey;type:varchar(26)"`
	UserID    string    `gorm:"primaryKey;type:varchar(26);index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// RevokedToken is a denylist entry for a logged-out session token, kept until the token expires
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;type:varchar(26)"` // token jti
	UserID    string    `gorm:"type:varchar(26);index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&User{}, &Post{}, &Comment{}, &CommentLike{}, &RevokedToken{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
