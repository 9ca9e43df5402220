package config

import "github.com/pipevine/pipevine/pkg/pipevine"

// Recognized keys.
const (
	// KeyName names the pipeline ("name").
	KeyName = "name"
	// KeyHighWaterMark sets the buffer threshold ("high_water_mark").
	KeyHighWaterMark = "high_water_mark"
	// KeyHalfOpen controls half-open closing behavior ("half_open").
	KeyHalfOpen = "half_open"
	// KeyObjectMode enables object mode for both directions
	// ("object_mode").
	KeyObjectMode = "object_mode"
	// KeyReadableObjectMode enables object mode for the read side only
	// ("readable_object_mode").
	KeyReadableObjectMode = "readable_object_mode"
	// KeyWritableObjectMode enables object mode for the write side
	// only ("writable_object_mode").
	KeyWritableObjectMode = "writable_object_mode"
)

// Options translates the recognized keys into pipevine options, in a
// stable order. Unrecognized keys are ignored, so a pipeline section
// can live inside a larger application config.
//
// Example:
//
//	cfg, err := config.FromFile("pipeline.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p := pipevine.New(stages, cfg.Options()...)
func (c Config) Options() []pipevine.Option {
	var opts []pipevine.Option
	if name := c.String(KeyName, ""); name != "" {
		opts = append(opts, pipevine.WithName(name))
	}
	if c.Has(KeyHighWaterMark) {
		opts = append(opts, pipevine.WithHighWaterMark(c.Int(KeyHighWaterMark, 0)))
	}
	if c.Has(KeyHalfOpen) {
		opts = append(opts, pipevine.WithHalfOpen(c.Bool(KeyHalfOpen, true)))
	}
	if c.Bool(KeyObjectMode, false) {
		opts = append(opts, pipevine.WithObjectMode())
	}
	if c.Bool(KeyReadableObjectMode, false) {
		opts = append(opts, pipevine.WithReadableObjectMode())
	}
	if c.Bool(KeyWritableObjectMode, false) {
		opts = append(opts, pipevine.WithWritableObjectMode())
	}
	return opts
}
