package cache

import "encoding/json"

// GetJSON decodes the JSON value stored under key into a T. An entry that
// fails to decode is reported as a miss.
func GetJSON[T any](c Cache, key string) (T, bool) {
	var value T
	data, ok := c.Get(key)
	if !ok {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, false
	}
	return value, true
}

// SetJSON stores value under key as JSON.
func SetJSON(c Cache, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.Set(key, data)
	return nil
}
