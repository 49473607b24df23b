package model

import "time"

// Student is an exam-taking user. Students authenticate with their student
// number.
type Student struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	StudentNo    string    `json:"student_no"`
	ClassID      int       `json:"class_id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StaffRole distinguishes the two staff user kinds.
type StaffRole string

const (
	StaffRoleTeacher   StaffRole = "TEACHER"
	StaffRolePrincipal StaffRole = "PRINCIPAL"
)

// Staff is a teacher or principal. Capabilities are derived from the role
// once at login and embedded in the token.
type Staff struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         StaffRole `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentLoginRequest is the student login payload.
type StudentLoginRequest struct {
	StudentNo string `json:"student_no" binding:"required,min=3,max=32"`
	Password  string `json:"password" binding:"required,min=6"`
}

// StaffLoginRequest is the staff login payload.
type StaffLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}
