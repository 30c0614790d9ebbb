package model

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleResident Role = "resident"
)

type User struct {
	ID           int64     `json:"id"            db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Name         string    `json:"name"          db:"name"          gorm:"column:name;not null"`
	Email        string    `json:"email"         db:"email"         gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `json:"-"             db:"password_hash" gorm:"column:password_hash;not null"`
	Phone        string    `json:"phone"         db:"phone"         gorm:"column:phone"`
	Role         Role      `json:"role"          db:"role"          gorm:"column:role;not null;default:resident"`
	UnitID       *int64    `json:"unit_id"       db:"unit_id"       gorm:"column:unit_id"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string { return "users" }

// Caller is the authenticated identity extracted from the bearer token,
// threaded through every service call that needs authorization.
type Caller struct {
	ID     int64
	Role   Role
	UnitID *int64
	IP     string
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }
