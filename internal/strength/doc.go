// Package strength scores candidate passwords.
//
// Evaluate checks five character requirements, adds length bonuses, subtracts
// penalties for repeated runs, common sequences and common words, and floors
// the result into a 0-4 score. The package has no state and no dependencies,
// so every function is safe for concurrent use.
package strength
