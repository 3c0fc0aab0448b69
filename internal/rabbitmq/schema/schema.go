package schema

import (
	"encoding/json"
)

type ActivationCode struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (m *ActivationCode) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *ActivationCode) Unmarshal(data []byte) error {
	return json.Unmarshal(data, m)
}
