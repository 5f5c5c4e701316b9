package user

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leanne() Record {
	return Record{
		ID:       1,
		Name:     "Leanne Graham",
		Username: "Bret",
		Email:    "Sincere@april.biz",
		Address:  Address{Street: "Kulas Light", City: "Gwenborough"},
		Phone:    "1-770-736-8031 x56442",
		Website:  "hildegard.org",
		Company:  Company{Name: "Romaguera-Crona"},
	}
}

func TestRecordMatches(t *testing.T) {
	r := leanne()

	tests := []struct {
		term string
		want bool
	}{
		{"", true},
		{"bret", true},
		{"LEANNE", true},
		{"april.biz", true},
		{"gwen", true},
		{"kulas", false},     // street is not searched
		{"romaguera", false}, // company is not searched
		{"hildegard", false}, // website is not searched
		{"zzz", false},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Matches(tt.term))
		})
	}
}

func TestFilter_PreservesOrderAndInput(t *testing.T) {
	a := Record{ID: 1, Name: "Alpha", Address: Address{City: "Paris"}}
	b := Record{ID: 2, Name: "Beta", Address: Address{City: "Berlin"}}
	c := Record{ID: 3, Name: "Gamma", Address: Address{City: "Bern"}}
	in := []Record{a, b, c}

	got := Filter(in, "ber")
	assert.Equal(t, []Record{b, c}, got)
	assert.Equal(t, []Record{a, b, c}, in, "input must not be mutated")

	assert.Equal(t, in, Filter(in, ""))
	assert.Empty(t, Filter(nil, "x"))
}

func TestRecord_DecodesJSONPlaceholderShape(t *testing.T) {
	raw := `{
		"id": 1,
		"name": "Leanne Graham",
		"username": "Bret",
		"email": "Sincere@april.biz",
		"address": {
			"street": "Kulas Light",
			"suite": "Apt. 556",
			"city": "Gwenborough",
			"zipcode": "92998-3874",
			"geo": {"lat": "-37.3159", "lng": "81.1496"}
		},
		"phone": "1-770-736-8031 x56442",
		"website": "hildegard.org",
		"company": {
			"name": "Romaguera-Crona",
			"catchPhrase": "Multi-layered client-server neural-net",
			"bs": "harness real-time e-markets"
		}
	}`
	var r Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	assert.Equal(t, leanne(), r)
}

func TestRecord_MissingNestedObjectsDefaultToEmpty(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"id": 7, "name": "X"}`), &r))
	assert.Equal(t, Address{}, r.Address)
	assert.Equal(t, Company{}, r.Company)
}

func TestFieldAccessors(t *testing.T) {
	var r Record
	for _, f := range Fields {
		require.NoError(t, r.SetField(f, "v-"+f))
	}
	for _, f := range Fields {
		assert.Equal(t, "v-"+f, r.Field(f))
	}
	assert.Equal(t, "v-street", r.Address.Street)
	assert.Equal(t, "v-company", r.Company.Name)

	err := r.SetField("zipcode", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
	assert.Equal(t, "", r.Field("zipcode"))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(leanne()))

	noCompany := leanne()
	noCompany.Company.Name = ""
	noCompany.Website = ""
	assert.NoError(t, Validate(noCompany), "company and website are optional")

	tests := []struct {
		name    string
		mutate  func(*Record)
		field   string
		message string
	}{
		{"bad email", func(r *Record) { r.Email = "not-an-email" }, FieldEmail, InvalidEmailMessage},
		{"email with space", func(r *Record) { r.Email = "a b@c.d" }, FieldEmail, InvalidEmailMessage},
		{"email without dot", func(r *Record) { r.Email = "a@b" }, FieldEmail, InvalidEmailMessage},
		{"blank name", func(r *Record) { r.Name = "   " }, FieldName, "Name is required."},
		{"empty city", func(r *Record) { r.Address.City = "" }, FieldCity, "City is required."},
		{"empty phone", func(r *Record) { r.Phone = "" }, FieldPhone, "Phone is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := leanne()
			tt.mutate(&r)

			err := Validate(r)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Message)
		})
	}
}
