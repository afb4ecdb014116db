package keypad

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Settings describes the pin wiring. Pin names are resolved through the
// periph.io registry, e.g. "GPIO18".
type Settings struct {
	Rows   []string `mapstructure:"rows" default:"[\"GPIO18\",\"GPIO23\",\"GPIO24\",\"GPIO25\"]" validate:"min=1,dive,required"`
	Cols   []string `mapstructure:"cols" default:"[\"GPIO10\",\"GPIO22\",\"GPIO27\",\"GPIO17\"]" validate:"min=1,dive,required"`
	Layout []string `mapstructure:"layout" default:"[\"123A\",\"456B\",\"789C\",\"*0#D\"]" validate:"min=1,dive,required"`
}

// DecodeSettings decodes the input.settings map.
func DecodeSettings(raw map[string]any) (Settings, error) {
	var s Settings

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return s, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return s, errors.Wrap(err, "failed to decode keypad settings")
	}

	if err := defaults.Set(&s); err != nil {
		return s, errors.Wrap(err, "failed to set defaults")
	}

	if err := validator.New().Struct(s); err != nil {
		return s, errors.Wrap(err, "keypad settings validation failed")
	}

	return s, nil
}

// Open resolves the configured pins and returns a ready matrix.
func Open(s Settings) (*Matrix, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize periph host")
	}

	rows := make([]OutPin, len(s.Rows))
	for i, name := range s.Rows {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, errors.Newf("unknown row pin %q", name)
		}
		rows[i] = p
	}

	cols := make([]InPin, len(s.Cols))
	for i, name := range s.Cols {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, errors.Newf("unknown column pin %q", name)
		}
		cols[i] = p
	}

	m, err := NewMatrix(rows, cols, s.Layout)
	if err != nil {
		return nil, err
	}
	if err := m.Setup(); err != nil {
		return nil, err
	}
	return m, nil
}
