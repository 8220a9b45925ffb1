package profiles

import "time"

// Profile is the public view of a user account.
type Profile struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	Email        string
	Instagram    string
	X            string
	Facebook     string
	GitHub       string
	IsActive     bool
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Instagram string
	X         string
	Facebook  string
	GitHub    string
}

// Stats aggregates the about-page counters.
type Stats struct {
	Users    int64
	Articles int64
}
