package ledger

// MutationKind names the primitive that caused a balance change.
type MutationKind string

const (
	MutationRegister MutationKind = "register"
	MutationMint     MutationKind = "mint"
	MutationBurn     MutationKind = "burn"
	MutationTransfer MutationKind = "transfer"
)

// Mutation describes one applied primitive. Transfer fills both From and To;
// Mint fills only To; Burn fills only From; Register fills only the asset
// fields.
type Mutation struct {
	Kind     MutationKind
	Asset    AssetID
	Symbol   string
	Decimals uint8
	From     AccountID
	To       AccountID
	Amount   uint64
}

// Observer receives every successful primitive mutation, in order, while the
// ledger mutex is still held. Observers must not call back into the ledger.
type Observer interface {
	Mutated(m Mutation)
}

// SetObserver installs the observer. Passing nil removes it.
func (l *Ledger) SetObserver(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observer = o
}

func (l *Ledger) notify(m Mutation) {
	if l.observer != nil {
		l.observer.Mutated(m)
	}
}
