// Package ledger defines the external transaction-stream collaborator the
// chain scanner consumes, plus two concrete Source implementations: a
// reconnecting websocket tailing client for live blocks, and an HTTP
// polling indexer client for catchup.
package ledger

import "context"

// Transaction is the Go shape of an ordered signed-transaction-in-block
// record the core filters by app_id and, optionally, an expected arg value.
type Transaction struct {
	Sender           [32]byte
	FirstValid       uint64
	LastValid        uint64
	Lease            [32]byte
	GenesisHash      [32]byte
	AppID            uint64
	AppArgs          [][]byte
	ConfirmedRound   uint64
	IntraRoundOffset uint64
}

// Source is the subscription interface both the tailing and catchup clients
// satisfy. Run blocks until ctx is cancelled or the source is exhausted
// (catchup) / disconnects permanently (tailing), delivering transactions on
// out in confirmed-round order. Run never drops a transaction it has
// accepted: send on out blocks rather than discarding, per the
// "channel owns an ordered queue and never drops" contract.
type Source interface {
	Run(ctx context.Context, out chan<- Transaction) error
}
