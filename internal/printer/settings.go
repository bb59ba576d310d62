// internal/printer/settings.go
package printer

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Settings is the raw settings block configured for one handler type
type Settings map[string]interface{}

// decode maps the settings onto a typed struct. Values are weakly typed so
// "9600" and 9600 both decode into an int field.
func (s Settings) decode(out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create settings decoder: %w", err)
	}

	if err := decoder.Decode(map[string]interface{}(s)); err != nil {
		return fmt.Errorf("invalid handler settings: %w", err)
	}
	return nil
}
