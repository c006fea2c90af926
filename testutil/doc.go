// Package testutil provides test infrastructure shared by tpictl packages.
//
// The central piece is BMC, an in-process fake of the board management
// controller API. It serves the login endpoint, enforces bearer tokens on
// /api/bmc and records every attempt it receives so tests can assert on
// methods, paths, Authorization headers and bodies.
//
//	func TestPower(t *testing.T) {
//	    bmc := testutil.NewBMC(t, testutil.WithUser("root", "turing"))
//	    target := bmc.Target().Get("power")
//	    ...
//	    if got := bmc.Attempts(); len(got) != 2 { ... }
//	}
//
// BMC implements TestComponent, so it can also be driven by hand with
// Setup/Teardown or through T(t).Setup.
package testutil
