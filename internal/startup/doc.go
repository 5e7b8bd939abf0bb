// Package startup handles configuration loading, directory validation and
// boot-time logging for pdf-workbench.
package startup
