package schema

// AuthStaffTable represents the 'auth.staff' table
type AuthStaffTable struct {
	Table        string
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	IsActive     string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    string
}

// AuthStaff is the schema definition for auth.staff
var AuthStaff = AuthStaffTable{
	Table:        "auth.staff",
	ID:           "id",
	Email:        "email",
	PasswordHash: "passwordhash",
	DisplayName:  "displayname",
	IsActive:     "isactive",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	DeletedAt:    "deletedat",
}

// Columns returns the columns hydrated by the login lookup
func (t AuthStaffTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.PasswordHash, t.DisplayName, t.IsActive, t.CreatedAt, t.UpdatedAt,
	}
}
