package models

import (
	"fmt"
	"strings"
)

// Field names one of the searchable text fields of a contact.
type Field string

const (
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldPhone     Field = "phone"
	FieldEmail     Field = "email"
)

// Fields lists the filterable fields in display order.
var Fields = []Field{FieldFirstName, FieldLastName, FieldPhone, FieldEmail}

type Contact struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

type ContactList struct {
	Contacts []Contact `json:"contacts"`
}

// ParseField accepts the JSON field names, ignoring case.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if strings.EqualFold(string(f), strings.TrimSpace(name)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown contact field: %q", name)
}

// Label returns a human readable name for the field.
func (f Field) Label() string {
	switch f {
	case FieldFirstName:
		return "First name"
	case FieldLastName:
		return "Last name"
	case FieldPhone:
		return "Phone"
	case FieldEmail:
		return "Email"
	default:
		return string(f)
	}
}

func NewContact(id int64, firstName, lastName, phone, email string) Contact {
	return Contact{
		ID:        id,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Phone:     strings.TrimSpace(phone),
		Email:     strings.TrimSpace(email),
	}
}

func (c Contact) Value(field Field) string {
	switch field {
	case FieldFirstName:
		return c.FirstName
	case FieldLastName:
		return c.LastName
	case FieldPhone:
		return c.Phone
	case FieldEmail:
		return c.Email
	default:
		return ""
	}
}

// Matches reports whether the field contains value, ignoring case.
// An empty value matches every contact.
func (c Contact) Matches(field Field, value string) bool {
	return strings.Contains(strings.ToLower(c.Value(field)), strings.ToLower(value))
}

func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (cl *ContactList) Len() int {
	return len(cl.Contacts)
}

func (cl *ContactList) Add(contact Contact) {
	cl.Contacts = append(cl.Contacts, contact)
}

// Remove deletes the contact with the given id and reports whether it existed.
func (cl *ContactList) Remove(id int64) bool {
	for i, contact := range cl.Contacts {
		if contact.ID == id {
			cl.Contacts = append(cl.Contacts[:i], cl.Contacts[i+1:]...)
			return true
		}
	}
	return false
}

func (cl *ContactList) FindByID(id int64) *Contact {
	for i, contact := range cl.Contacts {
		if contact.ID == id {
			return &cl.Contacts[i]
		}
	}
	return nil
}

// Replace overwrites the fields of the contact with the given id, keeping its
// id and position.
func (cl *ContactList) Replace(id int64, firstName, lastName, phone, email string) (Contact, bool) {
	contact := cl.FindByID(id)
	if contact == nil {
		return Contact{}, false
	}
	*contact = NewContact(id, firstName, lastName, phone, email)
	return *contact, true
}

// Filter returns the contacts whose field contains value, in list order.
func (cl *ContactList) Filter(field Field, value string) []Contact {
	filtered := make([]Contact, 0, len(cl.Contacts))
	for _, contact := range cl.Contacts {
		if contact.Matches(field, value) {
			filtered = append(filtered, contact)
		}
	}
	return filtered
}

// MaxID returns the largest id in the list, or zero when empty.
func (cl *ContactList) MaxID() int64 {
	var highest int64
	for _, contact := range cl.Contacts {
		if contact.ID > highest {
			highest = contact.ID
		}
	}
	return highest
}
