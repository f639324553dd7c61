package handler

// Form payloads of the auth pages. Passwords are never echoed back.

type signInForm struct {
	Email    string `form:"email"    validate:"required"`
	Password string `form:"password" validate:"required"`
}

type signUpForm struct {
	FirstName       string `form:"firstName"       validate:"required"`
	LastName        string `form:"lastName"        validate:"required"`
	Email           string `form:"email"           validate:"required,simpleemail"`
	Phone           string `form:"phone"`
	Password        string `form:"password"        validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

// verifyForm carries either the six digit boxes d0..d5 or a pasted code.
type verifyForm struct {
	Email string `form:"email"`
	Code  string `form:"code"`
	D0    string `form:"d0"`
	D1    string `form:"d1"`
	D2    string `form:"d2"`
	D3    string `form:"d3"`
	D4    string `form:"d4"`
	D5    string `form:"d5"`
}

func (f verifyForm) digits() []string {
	return []string{f.D0, f.D1, f.D2, f.D3, f.D4, f.D5}
}

type emailForm struct {
	Email string `form:"email" validate:"required,simpleemail"`
}

type resetPasswordForm struct {
	Token           string `form:"token"`
	Password        string `form:"password"        validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

// sessionResponse is the body of GET /api/session.
type sessionResponse struct {
	State     string       `json:"state"`
	Action    string       `json:"action"`
	Target    string       `json:"target,omitempty"`
	User      *sessionUser `json:"user,omitempty"`
	ExpiresAt string       `json:"expiresAt,omitempty"`
	Expiring  bool         `json:"expiring"`
}

type sessionUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	TermsAccepted bool   `json:"termsAccepted"`
}
