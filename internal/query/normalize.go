package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/budbeer/console/internal/service"
)

// BarRecord is a bar payload as it arrives from clients or legacy data.
// The storage layer historically wrote both camelCase and flattened
// lower-case keys (regularPrice vs regularprice), so decoding accepts
// either spelling and this package picks one canonical in-memory shape.
// Translation happens only here, at the boundary.
type BarRecord struct {
	Name           string
	Latitude       float64
	Longitude      float64
	RegularPrice   float64
	HappyHourPrice *float64
	DeviceID       string
}

// DecodeBarRecord parses a JSON bar payload, reconciling legacy key
// casings and string-encoded numbers. Unknown keys are ignored.
func DecodeBarRecord(data []byte) (*BarRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode bar record: %w", err)
	}

	// Fold keys to lower case so both conventions land on one spelling.
	fields := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		fields[strings.ToLower(k)] = v
	}

	rec := &BarRecord{}
	var err error
	if rec.Name, err = stringField(fields, "name"); err != nil {
		return nil, err
	}
	if rec.Latitude, err = numberField(fields, "latitude"); err != nil {
		return nil, err
	}
	if rec.Longitude, err = numberField(fields, "longitude"); err != nil {
		return nil, err
	}
	if rec.RegularPrice, err = numberField(fields, "regularprice"); err != nil {
		return nil, err
	}
	if v, ok := fields["happyhourprice"]; ok && !isNull(v) {
		price, err := parseNumber(v, "happyhourprice")
		if err != nil {
			return nil, err
		}
		rec.HappyHourPrice = &price
	}
	if rec.DeviceID, err = stringField(fields, "deviceid"); err != nil {
		return nil, err
	}
	return rec, nil
}

// Input converts the record into the moderation service's input shape.
func (r *BarRecord) Input() service.BarInput {
	return service.BarInput{
		Name:           r.Name,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		RegularPrice:   r.RegularPrice,
		HappyHourPrice: r.HappyHourPrice,
	}
}

func isNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) == "null"
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	v, ok := fields[key]
	if !ok || isNull(v) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("field %s: expected a string", key)
	}
	return s, nil
}

func numberField(fields map[string]json.RawMessage, key string) (float64, error) {
	v, ok := fields[key]
	if !ok || isNull(v) {
		return 0, nil
	}
	return parseNumber(v, key)
}

// parseNumber accepts both JSON numbers and numeric strings; legacy
// clients sent prices as strings.
func parseNumber(v json.RawMessage, key string) (float64, error) {
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("field %s: expected a number", key)
}
