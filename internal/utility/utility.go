package utility

import (
	"encoding/json"
)

// ConvertStruct copies source into target through a JSON round trip.
// target must be a pointer. Useful for DTO-to-model conversion where
// the json tags line up.
func ConvertStruct(source interface{}, target interface{}) (interface{}, error) {
	jsonData, err := json.Marshal(source)
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(jsonData, target); err != nil {
		return nil, err
	}

	return target, nil
}
