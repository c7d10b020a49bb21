package config

//go:generate go tool go-enum --marshal --names

// What to produce from the source stylesheet.
// ENUM(compile, canonical, parse, expand)
type Mode int

// Debug modes do not produce CSS.
func (m Mode) Debug() bool {
	return m != ModeCompile
}
