package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// NetworkID is a value object identifying a built signaling network
// Value objects are immutable and have no identity beyond their value
type NetworkID struct {
	value string
}

// NewNetworkID creates a new random NetworkID
func NewNetworkID() NetworkID {
	return NetworkID{value: uuid.New().String()}
}

// NewNetworkIDFromString creates a NetworkID from an existing string
func NewNetworkIDFromString(id string) (NetworkID, error) {
	if id == "" {
		return NetworkID{}, errors.New("network ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return NetworkID{}, errors.New("network ID must be a valid UUID")
	}
	return NetworkID{value: id}, nil
}

// String returns the string representation of the NetworkID
func (id NetworkID) String() string {
	return id.value
}

// Equals checks if two NetworkIDs are equal
func (id NetworkID) Equals(other NetworkID) bool {
	return id.value == other.value
}

// IsZero checks if the NetworkID is the zero value
func (id NetworkID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NetworkID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NetworkID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("NetworkID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
