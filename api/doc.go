// Package api describes where BMC management requests go.
//
// A Target is an immutable value: an absolute base URL of the form
// scheme://host/api/bmc plus the legacy query pairs understood by the BMC
// firmware (opt=get|set, type=<name>, ...). Methods never mutate the
// receiver; they return a modified copy.
//
//	t, err := api.NewTarget("turingpi.local", api.V1)
//	info := t.Get("info")
//	power := t.Set("power").With("node1", "1")
package api
