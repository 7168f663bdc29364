package tables

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Payload is a json document stored in a single column, used for audit log entries
type Payload map[string]interface{}

// Value serializes the payload for the sql driver
func (p Payload) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return driver.Value(""), err
	}
	return driver.Value(string(data)), nil
}

// Scan reads a payload column, NULL and empty columns scan into an empty document
func (p *Payload) Scan(src interface{}) error {
	var source []byte
	switch v := src.(type) {
	case string:
		source = []byte(v)
	case []byte:
		source = v
	case nil:
	default:
		return fmt.Errorf("error scanning json value: %+v", src)
	}
	if len(source) == 0 {
		*p = Payload{}
		return nil
	}
	return json.Unmarshal(source, p)
}
