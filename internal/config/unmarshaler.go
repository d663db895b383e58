package config

import (
	"path/filepath"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"

	"github.com/smykla-skalski/plughost/pkg/config"
)

var (
	durationType    = reflect.TypeFor[config.Duration]()
	stringSliceType = reflect.TypeFor[[]string]()
)

// CustomDecoderConfig returns the mapstructure config used to decode every
// layer. Result is set by the caller.
func CustomDecoderConfig() *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			// config.Duration implements encoding.TextUnmarshaler, which
			// parses "5s" and rejects negative values.
			mapstructure.TextUnmarshallerHookFunc(),
			numberToDurationHook,
			pathListHook,
		),
		WeaklyTypedInput: true,
	}
}

// numberToDurationHook reads bare numbers as seconds, so that
// `input_duration = 5` means five seconds.
func numberToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}

	var seconds float64

	switch from.Kind() { //nolint:exhaustive // other kinds fall through to mapstructure
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		seconds = float64(reflect.ValueOf(data).Int())
	case reflect.Float32, reflect.Float64:
		seconds = reflect.ValueOf(data).Float()
	default:
		return data, nil
	}

	if seconds < 0 {
		return nil, errors.Wrapf(config.ErrNegativeDuration, "got %vs", seconds)
	}

	return config.Duration(time.Duration(seconds * float64(time.Second))), nil
}

// pathListHook splits a single string on the OS list separator when a list of
// paths is expected, matching how PATH-like variables are written.
func pathListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != stringSliceType {
		return data, nil
	}

	s, _ := data.(string)
	if s == "" {
		return []string{}, nil
	}

	return filepath.SplitList(s), nil
}
