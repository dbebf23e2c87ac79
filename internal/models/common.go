package models

// Address is a shipping or billing address attached to an enquiry.
type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	Country      string `json:"country"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

// User is the backend's user document as it appears when populated inside
// enquiries (buyers) and vendor assignments (vendors).
type User struct {
	ID   string    `json:"_id,omitempty"`
	Auth *UserAuth `json:"auth,omitempty"`
	Role string    `json:"role,omitempty"`
}

type UserAuth struct {
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

func (u User) Identifier() string { return u.ID }

func (u User) Name() string {
	if u.Auth == nil {
		return ""
	}
	return u.Auth.Name
}

func (u User) Email() string {
	if u.Auth == nil {
		return ""
	}
	return u.Auth.Email
}

// AuthUser is the user resolved from a bearer token by /api/auth/me.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// RoleAdmin is the only role allowed into the console.
const RoleAdmin = "admin"

func (u AuthUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Vendor is an entry of the vendor catalog.
type Vendor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
