// Package demodata generates the randomized storefront records shown by
// the streamed sections. Generators draw all randomness from the supplied
// *rand.Rand, so a fixed seed yields fixed output.
package demodata
