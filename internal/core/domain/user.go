package domain

import "strings"

// Role identifies which portal an account belongs to.
type Role string

const (
	RoleUnknown        Role = ""
	RoleHoldingsAdmin  Role = "holdings_admin"
	RoleFranchiseOwner Role = "franchise_owner"
	RoleManager        Role = "manager"
	RoleDriver         Role = "driver"
	RoleCustomer       Role = "customer"
	RoleEmployer       Role = "employer"
	RoleEmployee       Role = "employee"
	RoleInvestor       Role = "investor"
	RoleSBALender      Role = "sba_lender"
)

// ParseRole maps the wire value sent by the auth API to a Role.
// Anything unrecognised becomes RoleUnknown.
func ParseRole(s string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleHoldingsAdmin, RoleFranchiseOwner, RoleManager, RoleDriver,
		RoleCustomer, RoleEmployer, RoleEmployee, RoleInvestor, RoleSBALender:
		return r
	default:
		return RoleUnknown
	}
}

// User is the authenticated account as last reported by the auth API.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	Role          Role   `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	TermsAccepted bool   `json:"termsAccepted"`
}

// MarkEmailVerified flips the verification flag. It never clears it.
func (u *User) MarkEmailVerified() {
	u.EmailVerified = true
}

// MarkTermsAccepted flips the terms flag. It never clears it.
func (u *User) MarkTermsAccepted() {
	u.TermsAccepted = true
}

// Merge applies a fresher copy of the account from the auth API while keeping
// both flags monotonic.
func (u *User) Merge(fresh User) {
	verified := u.EmailVerified || fresh.EmailVerified
	terms := u.TermsAccepted || fresh.TermsAccepted
	*u = fresh
	u.EmailVerified = verified
	u.TermsAccepted = terms
}
