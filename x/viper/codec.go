package viper

import (
	"github.com/inhies/go-bytesize"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"reflect"
)

// Unmarshal unmarshals the whole config into a Struct. Make sure that the
// tags on the fields of the structure are properly set.
// Unmarshal uses DecodeHook as the decode hook.
func Unmarshal(v *viper.Viper, rawVal interface{}, opts ...viper.DecoderConfigOption) error {
	return v.Unmarshal(rawVal, append(opts, viper.DecodeHook(DecodeHook()))...)
}

// UnmarshalKey is Unmarshal for a single config section, e.g. "processor".
func UnmarshalKey(v *viper.Viper, key string, rawVal interface{}, opts ...viper.DecoderConfigOption) error {
	return v.UnmarshalKey(key, rawVal, append(opts, viper.DecodeHook(DecodeHook()))...)
}

// DecodeHook returns
//
//	 mapstructure.ComposeDecodeHookFunc(
//			mapstructure.StringToTimeDurationHookFunc(),
//			mapstructure.StringToSliceHookFunc(","),
//			StringToByteSizeHookFunc(),
//		)
//
// Comma separated strings decode into slices so list options like
// processor.fields can be overridden from the environment.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		StringToByteSizeHookFunc(),
	)
}

// StringToByteSizeHookFunc returns a DecodeHookFunc that converts
// human readable sizes ("64KB", "1MB") to bytesize.ByteSize.
func StringToByteSizeHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}

		if t != reflect.TypeOf(bytesize.B) {
			return data, nil
		}

		sDec, err := bytesize.Parse(data.(string))
		if err != nil {
			return nil, err
		}

		return sDec, nil
	}
}
