// Package script defines the post-processing script contract and the
// registry that instantiates scripts from a profile. A script receives
// the sliced job as an ordered list of text buffers and returns the
// same list with its modifications applied.
package script

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Script is one post-processing step in the pipeline.
type Script interface {
	// Name returns the script name, which is also its profile section.
	Name() string

	// SettingData returns the script's settings definition as a JSON
	// document (name/key/metadata/version/settings), the same schema
	// slicer plugin frontends consume to render a settings UI.
	SettingData() string

	// Execute runs the script over the job buffers. The returned slice
	// must have the same length as the input.
	Execute(buffers []string) ([]string, error)
}

// SettingDefault extracts the default value of a setting from a
// settings definition document. The second return is false when the
// setting is not declared.
func SettingDefault(settingData, key string) (gjson.Result, bool) {
	res := gjson.Get(settingData, "settings."+key+".default_value")
	return res, res.Exists()
}

// SettingKeys returns the declared setting keys of a definition
// document in declaration order.
func SettingKeys(settingData string) []string {
	var keys []string
	gjson.Get(settingData, "settings").ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

// StampValues returns the settings definition with each setting's
// current value injected as a "value" field, for describe/export
// output that mirrors what a slicer UI would show.
func StampValues(settingData string, values map[string]interface{}) (string, error) {
	out := settingData
	for key, val := range values {
		var err error
		out, err = sjson.Set(out, "settings."+key+".value", val)
		if err != nil {
			return "", fmt.Errorf("script: stamp %s: %w", key, err)
		}
	}
	return out, nil
}
