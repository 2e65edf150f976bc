package baas

import "github.com/mitchellh/mapstructure"

// decodeEntity shapes a parsed JSON object into a typed entity. Weak
// typing is deliberate: JSON numbers arrive as float64 and must land in
// integer fields.
func decodeEntity(obj map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return &Error{StatusCode: 0, StatusText: statusTextParseFailure, ResponseText: err.Error()}
	}
	if err := dec.Decode(obj); err != nil {
		return &Error{StatusCode: 0, StatusText: statusTextParseFailure, ResponseText: err.Error()}
	}
	return nil
}
