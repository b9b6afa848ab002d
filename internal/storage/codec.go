package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"rhystmorgan/contactbook/internal/models"
)

// ErrCorruptSlot marks slot contents that could not be decoded.
var ErrCorruptSlot = errors.New("corrupt contact slot")

// EncodeContacts serializes contacts as a JSON array. A nil slice encodes as [].
func EncodeContacts(contacts []models.Contact) ([]byte, error) {
	if contacts == nil {
		contacts = []models.Contact{}
	}
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contacts: %w", err)
	}
	return data, nil
}

// DecodeContacts parses a JSON array of contacts. Empty input and null
// decode to an empty list.
func DecodeContacts(data []byte) ([]models.Contact, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []models.Contact{}, nil
	}

	var contacts []models.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSlot, err)
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return contacts, nil
}
