package schema

// AuthAdminTable represents the 'auth.admin' table
type AuthAdminTable struct {
	Table        string
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    string
}

// AuthAdmin is the schema definition for auth.admin
var AuthAdmin = AuthAdminTable{
	Table:        "auth.admin",
	ID:           "id",
	Email:        "email",
	PasswordHash: "passwordhash",
	DisplayName:  "displayname",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	DeletedAt:    "deletedat",
}

// Columns returns the columns hydrated by the login lookup
func (t AuthAdminTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.PasswordHash, t.DisplayName, t.CreatedAt, t.UpdatedAt,
	}
}
