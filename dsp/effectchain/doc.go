// Package effectchain composes effects into an ordered chain that
// processes blocks in place, and builds chains from registered effect
// types and JSON descriptions.
package effectchain
