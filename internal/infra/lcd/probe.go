package lcd

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/i2c"
)

// ErrDeviceNotFound is returned when no candidate address answers.
var ErrDeviceNotFound = errors.New("no display controller found on the I2C bus")

// Probe returns the first candidate address that acknowledges a write.
func Probe(bus i2c.Bus, candidates []uint16) (uint16, error) {
	for _, addr := range candidates {
		dev := &i2c.Dev{Bus: bus, Addr: addr}
		if _, err := dev.Write([]byte{0}); err != nil {
			zlog.Debug().Msgf("lcd: no device at address 0x%02x: %v", addr, err)
			continue
		}
		zlog.Info().Msgf("lcd: found device at address 0x%02x", addr)
		return addr, nil
	}

	tried := make([]string, len(candidates))
	for i, addr := range candidates {
		tried[i] = fmt.Sprintf("0x%02x", addr)
	}
	return 0, errors.Wrapf(ErrDeviceNotFound, "tried %s", strings.Join(tried, ", "))
}
