// Package casematch provides structural pattern matching over a small
// dynamic value model, with ordered, guarded case statements.
//
// Values are in package 'value', patterns and bindings are in
// 'match', and statements (arm selection) are in 'core'.  The
// exhaustiveness advisor and other utilities are in 'tools', and
// some command-line tools are in `cmd`.
package casematch
