package models

import (
	"encoding/json"
	"fmt"
)

// MModel is a financial model record as served by the models backend.
// Content is kept as the backend sent it.
type MModel struct {
	ID           ModelID         `json:"id"`
	Name         string          `json:"name"`
	Owner        string          `json:"owner"`
	LastModified string          `json:"lastModified"`
	Content      json.RawMessage `json:"content,omitempty"`
}

// ModelID accepts both string and numeric ids from the backend.
type ModelID string

func (id ModelID) String() string {
	return string(id)
}

func (id *ModelID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ModelID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("model id must be a string or number: %s", data)
	}
	*id = ModelID(n.String())
	return nil
}
