package filter

import (
	"sort"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/padbox/internal/infra/config"
)

// NewChainFromConfig creates a chain with every enabled filter, in name
// order. Unknown filter names are an error.
func NewChainFromConfig(cfg *config.Config) (*Chain, error) {
	names := make([]string, 0, len(cfg.Filters))
	for name := range cfg.Filters {
		names = append(names, name)
	}
	sort.Strings(names)

	chain := NewChain()
	for _, name := range names {
		fcfg := cfg.Filters[name]
		if !fcfg.Enabled {
			zlog.Debug().Msgf("filter disabled: name=%s", name)
			continue
		}

		f, err := New(name, fcfg.Settings)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create filter")
		}
		chain.Add(f)
		zlog.Info().Msgf("registered filter: name=%s settings=%+v", name, fcfg.Settings)
	}

	return chain, nil
}
