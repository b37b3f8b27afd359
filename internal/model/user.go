package model

// Staff roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User portal staff account (users)
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'staff'"      json:"role"` // admin | staff
	BaseModel
}

// TableName table name
func (User) TableName() string { return "users" }
