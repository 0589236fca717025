// Command loan-simulation drives a journal-backed loan registry with a steady stream
// of realistic operations.
//
// A simulated payment gateway approves or declines payments, a resource catalog owns a
// fixed range of resource ids, and a ticking clock advances the registry height. Most
// scenarios are valid lifecycle steps (start, check, extend, end); a configurable share
// are intentional error cases such as checks for unknown loans, early ends by the
// borrower, or extensions of expired loans.
//
// The journal database is selected with the LOANS_* environment variables of the config
// package (SQLite in loans.db by default). Simulation parameters come from SIM_* variables
// and can be overridden with flags:
//
//	loan-simulation -rate 50 -resources 500 -borrowers 200 -metrics-addr :9090
//
// With -metrics-addr set, Prometheus metrics are served on /metrics. SIGINT or SIGTERM
// stops the simulation, waits for running operations and writes a final snapshot.
package main
