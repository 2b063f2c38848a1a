// Package blocks implements the behaviour behind graph nodes and legacy rules.
//
// Conditions sense the environment and back Input nodes. Logic values combine
// boolean signals and back Process nodes. Actions perform side effects and back
// Output nodes. Every block is built from a configuration bag decoded with
// Decode; the catalogue mapping type names to constructors lives in package
// registry.
package blocks
