package user

import "strings"

// Address is the postal part of a user record. Only street and city are
// tracked; other fields the remote API returns are dropped on decode.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

// Company holds the user's employer.
type Company struct {
	Name string `json:"name"`
}

// Record is a single user as held by the collection store and exchanged with
// the remote users API.
type Record struct {
	ID       int     `json:"id,omitempty"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Address  Address `json:"address"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website"`
	Company  Company `json:"company"`
}

// Matches reports whether any of name, username, email or city contains term,
// ignoring case. An empty term matches every record.
func (r Record) Matches(term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, field := range []string{r.Name, r.Username, r.Email, r.Address.City} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Filter returns the ordered subsequence of records matching term. The input
// slice is never modified.
func Filter(records []Record, term string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Matches(term) {
			out = append(out, r)
		}
	}
	return out
}
