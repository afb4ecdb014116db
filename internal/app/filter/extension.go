package filter

import (
	"context"
	"path/filepath"
	"strings"

	zlog "github.com/rs/zerolog/log"
)

// ExtensionConfig represents the configuration for ExtensionFilter.
type ExtensionConfig struct {
	Extensions []string `yaml:"extensions" mapstructure:"extensions" default:"[\".wav\",\".mp3\",\".flac\",\".ogg\",\".oga\"]" validate:"min=1,dive,required"`
}

// ExtensionFilter accepts files whose extension is in the allowed list.
type ExtensionFilter struct {
	allowed map[string]bool
}

// NewExtensionFilter creates an extension filter for the given extensions.
// Extensions are matched case-insensitively, with or without a leading dot.
func NewExtensionFilter(extensions ...string) *ExtensionFilter {
	f := &ExtensionFilter{}
	f.setExtensions(extensions)
	return f
}

func (f *ExtensionFilter) setExtensions(extensions []string) {
	f.allowed = make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.allowed[ext] = true
	}
}

func (f *ExtensionFilter) Name() string {
	return "extension_filter"
}

func (f *ExtensionFilter) Description() string {
	return "Accepts only files with a playable audio extension"
}

func (f *ExtensionFilter) ReturnCodes() []string {
	return []string{"unsupported_extension"}
}

func (f *ExtensionFilter) ValidateConfig(settings map[string]any) error {
	var config ExtensionConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	f.setExtensions(config.Extensions)
	zlog.Debug().Msgf("extension filter config: %+v", config)
	return nil
}

func (f *ExtensionFilter) Check(ctx context.Context, e Entry) Result {
	// Not configured: accept everything
	if f.allowed == nil {
		return Accept()
	}
	if !f.allowed[strings.ToLower(filepath.Ext(e.Name))] {
		return Reject("unsupported_extension")
	}
	return Accept()
}

func init() {
	Register("extension_filter", func() Filter {
		return &ExtensionFilter{}
	})
}
