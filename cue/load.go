package cue

import (
	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/config"
)

// Load reads the named script from dir, falling back to the embedded scripts,
// and compiles it.
func Load(dir, name string, music, ambience Channel, logger *zap.Logger) (*Runtime, error) {
	src, err := config.ReadScript(dir, name)
	if err != nil {
		return nil, err
	}
	return Compile(name, src, music, ambience, logger)
}
