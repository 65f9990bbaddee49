package models

// Money is an amount in integer minor units (e.g. cents). All arithmetic in
// the ledger is integral; display formatting belongs to the UI.
type Money int64
