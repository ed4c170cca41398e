package models

// UserRole represents what a staff member does at the academy.
type UserRole string

const (
	UserRoleAdmin   UserRole = "ADMIN"
	UserRoleTeacher UserRole = "TEACHER"
	UserRoleStaff   UserRole = "STAFF"
)

// User is owned by the user registry; the finance core only reads it
// (creator identity, active teachers for payroll).
type User struct {
	Base
	Email    string   `gorm:"uniqueIndex;not null" json:"email"`
	Password string   `gorm:"not null" json:"-"`
	Name     string   `json:"name"`
	Role     UserRole `gorm:"type:varchar(16);not null;index" json:"role"`
	IsActive bool     `gorm:"not null" json:"is_active"`
}

// UserSummary is the creator/teacher identity embedded in read models.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the public identity of the user, or nil for a nil user.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
