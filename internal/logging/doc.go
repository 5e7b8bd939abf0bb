// Package logging provides leveled logging for pdf-workbench.
//
// The level is read from the DEBUG and LOG_LEVEL environment variables at
// startup and can be overridden with SetLevel. Output goes through the
// standard library logger so timestamps and destinations stay configurable
// by the embedding process.
package logging
