package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gobwas/glob"
	zlog "github.com/rs/zerolog/log"
)

// PatternConfig represents the configuration for PatternFilter.
type PatternConfig struct {
	Include []string `yaml:"include" mapstructure:"include"`
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
}

// PatternFilter matches file names against glob patterns.
// An entry must match at least one include pattern (when any are set)
// and no exclude pattern.
type PatternFilter struct {
	include []glob.Glob
	exclude []glob.Glob
}

func (f *PatternFilter) Name() string {
	return "pattern_filter"
}

func (f *PatternFilter) Description() string {
	return "Includes or excludes files by glob pattern on the file name"
}

func (f *PatternFilter) ReturnCodes() []string {
	return []string{"pattern_not_included", "pattern_excluded"}
}

func (f *PatternFilter) ValidateConfig(settings map[string]any) error {
	var config PatternConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	if len(config.Include) == 0 && len(config.Exclude) == 0 {
		return errors.New("at least one include or exclude pattern is required")
	}

	include, err := compileAll(config.Include)
	if err != nil {
		return errors.Wrap(err, "invalid include pattern")
	}
	exclude, err := compileAll(config.Exclude)
	if err != nil {
		return errors.Wrap(err, "invalid exclude pattern")
	}

	f.include = include
	f.exclude = exclude
	zlog.Debug().Msgf("pattern filter config: %+v", config)
	return nil
}

func (f *PatternFilter) Check(ctx context.Context, e Entry) Result {
	if len(f.include) > 0 && !matchAny(f.include, e.Name) {
		return Reject("pattern_not_included")
	}
	if matchAny(f.exclude, e.Name) {
		return Reject("pattern_excluded")
	}
	return Accept()
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "pattern %q", p)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func init() {
	Register("pattern_filter", func() Filter {
		return &PatternFilter{}
	})
}
