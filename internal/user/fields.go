package user

import "fmt"

// Editable field names, in the order the forms present them.
const (
	FieldName     = "name"
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldStreet   = "street"
	FieldCity     = "city"
	FieldCompany  = "company"
	FieldWebsite  = "website"
)

// Fields lists every editable field.
var Fields = []string{
	FieldName, FieldUsername, FieldEmail, FieldPhone,
	FieldStreet, FieldCity, FieldCompany, FieldWebsite,
}

// Field returns the value of the named editable field, or "" for an unknown name.
func (r Record) Field(name string) string {
	switch name {
	case FieldName:
		return r.Name
	case FieldUsername:
		return r.Username
	case FieldEmail:
		return r.Email
	case FieldPhone:
		return r.Phone
	case FieldStreet:
		return r.Address.Street
	case FieldCity:
		return r.Address.City
	case FieldCompany:
		return r.Company.Name
	case FieldWebsite:
		return r.Website
	}
	return ""
}

// SetField assigns the named editable field.
func (r *Record) SetField(name, value string) error {
	switch name {
	case FieldName:
		r.Name = value
	case FieldUsername:
		r.Username = value
	case FieldEmail:
		r.Email = value
	case FieldPhone:
		r.Phone = value
	case FieldStreet:
		r.Address.Street = value
	case FieldCity:
		r.Address.City = value
	case FieldCompany:
		r.Company.Name = value
	case FieldWebsite:
		r.Website = value
	default:
		return fmt.Errorf("user: unknown field %q", name)
	}
	return nil
}
