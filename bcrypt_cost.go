//go:build !race

package userauth

func passwordHashCost() int {
	// High enough to resist offline brute force, low enough that a single
	// login cannot stall the service under load.
	return 12
}
