package domain

// ============================================================
// User profile
// ============================================================

// UserProfile is the singleton profile of the dashboard owner.
type UserProfile struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Username         string  `json:"username"`
	Email            string  `json:"email"`
	Avatar           *string `json:"avatar"` // data URL or null
	DateOfBirth      string  `json:"dateOfBirth"`
	PresentAddress   string  `json:"presentAddress"`
	PermanentAddress string  `json:"permanentAddress"`
	City             string  `json:"city"`
	PostalCode       string  `json:"postalCode"`
	Country          string  `json:"country"`
	PasswordHash     string  `json:"passwordHash,omitempty"`
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
// Password carries a new cleartext password; it is hashed before it is stored.
type ProfilePatch struct {
	Name             *string `json:"name,omitempty"`
	Username         *string `json:"username,omitempty"`
	Email            *string `json:"email,omitempty"`
	Avatar           *string `json:"avatar,omitempty"`
	DateOfBirth      *string `json:"dateOfBirth,omitempty"`
	PresentAddress   *string `json:"presentAddress,omitempty"`
	PermanentAddress *string `json:"permanentAddress,omitempty"`
	City             *string `json:"city,omitempty"`
	PostalCode       *string `json:"postalCode,omitempty"`
	Country          *string `json:"country,omitempty"`
	Password         *string `json:"password,omitempty"`
}

// Empty reports whether the patch sets no field.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Username == nil && p.Email == nil && p.Avatar == nil &&
		p.DateOfBirth == nil && p.PresentAddress == nil && p.PermanentAddress == nil &&
		p.City == nil && p.PostalCode == nil && p.Country == nil && p.Password == nil
}

// ProfileState is the read surface of the profile provider.
type ProfileState struct {
	User      *UserProfile `json:"user"`
	IsLoading bool         `json:"isLoading"`
}

// DefaultProfile returns the profile adopted on first run.
func DefaultProfile() UserProfile {
	return UserProfile{
		ID:               "user-1",
		Name:             "Charlene Reed",
		Username:         "charlene",
		Email:            "charlenereed@gmail.com",
		Avatar:           nil,
		DateOfBirth:      "1990-01-25",
		PresentAddress:   "San Jose, California, USA",
		PermanentAddress: "San Jose, California, USA",
		City:             "San Jose",
		PostalCode:       "45962",
		Country:          "usa",
	}
}
