package mcptools

import "github.com/dusk-indust/userdesk/internal/user"

// --- MCP Tool Input Types ---
// The MCP Go SDK generates JSON schemas from these struct tags.

// ListUsersInput is the input for the list_users MCP tool.
type ListUsersInput struct {
	Query string `json:"query,omitempty" jsonschema:"case-insensitive substring matched against name, username, email and city (empty lists everyone)"`
}

// ListUsersOutput is the result of the list_users MCP tool.
type ListUsersOutput struct {
	Users []user.Record `json:"users"`
	Total int           `json:"total"`
	Error string        `json:"error,omitempty"`
}

// AddUserInput is the input for the add_user MCP tool.
type AddUserInput struct {
	Name     string `json:"name" jsonschema:"full name"`
	Username string `json:"username" jsonschema:"login handle"`
	Email    string `json:"email" jsonschema:"email address"`
	Phone    string `json:"phone" jsonschema:"phone number"`
	Street   string `json:"street" jsonschema:"street address"`
	City     string `json:"city" jsonschema:"city"`
	Company  string `json:"company,omitempty" jsonschema:"company name"`
	Website  string `json:"website,omitempty" jsonschema:"website"`
}

// fields maps the input onto record field names.
func (in AddUserInput) fields() map[string]string {
	return map[string]string{
		user.FieldName:     in.Name,
		user.FieldUsername: in.Username,
		user.FieldEmail:    in.Email,
		user.FieldPhone:    in.Phone,
		user.FieldStreet:   in.Street,
		user.FieldCity:     in.City,
		user.FieldCompany:  in.Company,
		user.FieldWebsite:  in.Website,
	}
}

// EditUserInput is the input for the edit_user MCP tool.
type EditUserInput struct {
	ID     int               `json:"id" jsonschema:"id of the user to edit"`
	Fields map[string]string `json:"fields" jsonschema:"field values to change, keyed by name, username, email, phone, street, city, company or website"`
}

// DeleteUserInput is the input for the delete_user MCP tool.
type DeleteUserInput struct {
	IDs []int `json:"ids" jsonschema:"ids of the users to delete"`
}

// UserOutput is the result of the add_user and edit_user MCP tools.
type UserOutput struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	User    *user.Record `json:"user,omitempty"`
}

// DeleteUserOutput is the result of the delete_user MCP tool.
type DeleteUserOutput struct {
	Results []DeleteResult `json:"results"`
}

// DeleteResult reports one delete.
type DeleteResult struct {
	ID      int    `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
