package testsupport

import (
	"encoding/json"
	"os"
	"time"
)

// LoadGolden decodes the JSON file at path into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// FixedTime is a stable clock value for tests.
var FixedTime = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

// FixedClock returns FixedTime.
func FixedClock() time.Time { return FixedTime }
