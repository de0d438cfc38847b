package model

import "time"

// Role is an actor role used for authorization and audit.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePartner Role = "partner"
	// RoleSystem marks changes made by platform ingestion rather than a person.
	// It is stored as the platform name, matching created_by_role values of
	// imported orders.
	RoleSystem Role = "shopify"
)

// User is a portal account. Partners are users with RolePartner.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Phone        string
	Address      string
	ZoneRanges   []string
	CreatedAt    time.Time
}

// Actor identifies who performs an operation.
type Actor struct {
	UserID int64
	Role   Role
	Email  string
}

// ActorFromUser builds an Actor for u.
func ActorFromUser(u *User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, Email: u.Email}
}

// SystemActor is used for webhook and sync ingestion.
var SystemActor = Actor{Role: RoleSystem}

// IsAdmin reports whether the actor has admin rights.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsPartner reports whether the actor is a partner.
func (a Actor) IsPartner() bool { return a.Role == RolePartner }
