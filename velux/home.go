package velux

import (
	"encoding/json"
	"errors"
)

// BridgeModuleType is the module type of the velux gateway
const BridgeModuleType = "NXG"

var (
	ErrHomeNotFound   = errors.New("velux home info contains no home")
	ErrBridgeNotFound = errors.New("velux home info contains no bridge module")
)

type Module struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type Home struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Modules []Module `json:"modules"`
}

// HomeInfo is the home topology response, Raw holds the payload exactly as received
type HomeInfo struct {
	Raw    json.RawMessage `json:"-"`
	Status string          `json:"status"`
	Body   struct {
		Homes []Home `json:"homes"`
	} `json:"body"`
}

// MarshalJSON renders the untouched vendor payload
func (h *HomeInfo) MarshalJSON() ([]byte, error) {
	if len(h.Raw) == 0 {
		return []byte("null"), nil
	}
	return h.Raw, nil
}

// HomeID is the id of the first home
func (h *HomeInfo) HomeID() (string, error) {
	if len(h.Body.Homes) == 0 {
		return "", ErrHomeNotFound
	}
	return h.Body.Homes[0].ID, nil
}

// BridgeID is the id of the first NXG module of the first home
func (h *HomeInfo) BridgeID() (string, error) {
	if len(h.Body.Homes) == 0 {
		return "", ErrHomeNotFound
	}
	for _, m := range h.Body.Homes[0].Modules {
		if m.Type == BridgeModuleType {
			return m.ID, nil
		}
	}
	return "", ErrBridgeNotFound
}

// ParseHomeInfo decodes a home topology payload and keeps the raw bytes
func ParseHomeInfo(raw []byte) (*HomeInfo, error) {
	var info HomeInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, err
	}
	info.Raw = append(json.RawMessage(nil), raw...)
	return &info, nil
}
