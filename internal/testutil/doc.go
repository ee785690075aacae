// Package testutil provides deterministic id generators, loggers and
// fixture schemas shared by package tests and the conformance harness.
package testutil
