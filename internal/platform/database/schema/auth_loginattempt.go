package schema

// AuthLoginAttemptTable represents the 'auth.loginattempt' table
type AuthLoginAttemptTable struct {
	Table         string
	ID            string
	Email         string
	IPAddress     string
	UserAgent     string
	Guard         string
	Successful    string
	FailureReason string
	CreatedAt     string
}

// AuthLoginAttempt is the schema definition for auth.loginattempt
var AuthLoginAttempt = AuthLoginAttemptTable{
	Table:         "auth.loginattempt",
	ID:            "id",
	Email:         "email",
	IPAddress:     "ipaddress",
	UserAgent:     "useragent",
	Guard:         "guard",
	Successful:    "successful",
	FailureReason: "failurereason",
	CreatedAt:     "createdat",
}

// Columns returns all standard column names
func (t AuthLoginAttemptTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.IPAddress, t.UserAgent, t.Guard, t.Successful, t.FailureReason, t.CreatedAt,
	}
}
