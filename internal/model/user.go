// Package model defines the data structures used throughout the application.
package model

import "time"

// DefaultPlan is the plan tier every new account starts on.
const DefaultPlan = "free"

// User represents a registered account.
//
// Email is the login identity and is UNIQUE in the store; equality is
// case-sensitive. PasswordHash is the bcrypt output and is never serialised
// (json:"-"), so a User can't leak it even if a handler encodes one by mistake.
// API responses use UserProfile instead.
type User struct {
	ID           string    `json:"id"          db:"id"`
	Name         string    `json:"name"        db:"name"`
	Email        string    `json:"email"       db:"email"`
	Address      string    `json:"address"     db:"address"`
	PhoneNumber  string    `json:"phoneNumber" db:"phone_number"`
	PasswordHash string    `json:"-"           db:"password"`
	JobTitle     string    `json:"jobTitle"    db:"job_title"`
	Department   string    `json:"department"  db:"department"`
	Company      string    `json:"company"     db:"company"`
	Location     string    `json:"location"    db:"location"`
	Bio          string    `json:"bio"         db:"bio"`
	ProfilePic   string    `json:"profilePic"  db:"profile_pic"`
	Plan         string    `json:"plan"        db:"plan"`
	MemberSince  time.Time `json:"memberSince" db:"member_since"`
	LastLogin    time.Time `json:"lastLogin"   db:"last_login"`
}

// UserProfile is the read-only projection returned by GET /api/user/profile.
type UserProfile struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phoneNumber"`
	JobTitle    string    `json:"jobTitle"`
	Department  string    `json:"department"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Bio         string    `json:"bio"`
	ProfilePic  string    `json:"profilePic"`
	Plan        string    `json:"plan"`
	MemberSince time.Time `json:"memberSince"`
	LastLogin   time.Time `json:"lastLogin"`
}

// Profile projects u onto a UserProfile.
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		Name:        u.Name,
		Email:       u.Email,
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
		JobTitle:    u.JobTitle,
		Department:  u.Department,
		Company:     u.Company,
		Location:    u.Location,
		Bio:         u.Bio,
		ProfilePic:  u.ProfilePic,
		Plan:        u.Plan,
		MemberSince: u.MemberSince,
		LastLogin:   u.LastLogin,
	}
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the body of PUT /api/user/profile. Nil fields are left as is.
type ProfileUpdate struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phoneNumber"`
	JobTitle    *string `json:"jobTitle"`
	Department  *string `json:"department"`
	Company     *string `json:"company"`
	Location    *string `json:"location"`
	Bio         *string `json:"bio"`
}
