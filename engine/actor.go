package engine

import (
	"fmt"
	"sync"

	"github.com/stradax/go-ledger/ledger"
)

// CommandKind names a submittable command.
type CommandKind string

const (
	CmdTransfer          CommandKind = "transfer"
	CmdDepositCollateral CommandKind = "deposit_collateral"
	CmdStake             CommandKind = "stake"
	CmdUnstake           CommandKind = "unstake"
	CmdAddRewards        CommandKind = "add_rewards"
	CmdClaim             CommandKind = "claim"
)

// Command is one unit of work for the actor loop. Vault names which vault or
// accrual engine the command targets; Amount2 carries the second collateral
// leg for deposits.
type Command struct {
	Kind    CommandKind
	Vault   string
	Caller  string
	Asset   string
	To      string
	Amount  uint64
	Amount2 uint64
}

// Result is the outcome of one command. Value carries shares minted, base
// returned or rewards paid, depending on the command kind.
type Result struct {
	Value uint64
	Err   error
}

// Actor runs an engine as a single-threaded command loop: commands are
// applied strictly in arrival order, which is the actor rendering of the
// serialized state-machine contract. Submit blocks only on a full inbox.
type Actor struct {
	engine *Engine
	inbox  chan request
	stopCh chan struct{}

	mu         sync.Mutex
	running    bool
	submitters sync.WaitGroup
}

type request struct {
	cmd   Command
	reply chan Result
}

// NewActor wraps an engine in a command loop with the given inbox capacity.
func NewActor(e *Engine, inboxSize int) *Actor {
	if inboxSize <= 0 {
		inboxSize = 100
	}
	return &Actor{
		engine: e,
		inbox:  make(chan request, inboxSize),
		stopCh: make(chan struct{}),
	}
}

// Start begins the processing loop.
func (a *Actor) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return fmt.Errorf("engine: actor already running")
	}
	a.running = true
	a.stopCh = make(chan struct{})
	go a.processLoop()
	return nil
}

// Stop halts the loop. Stop returns once every in-flight submission has a
// result: commands the loop already picked up are applied, the rest are
// answered with an error.
func (a *Actor) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.stopCh)
	a.mu.Unlock()

	a.submitters.Wait()
	a.drain()
}

// Submit enqueues a command and returns a channel that will receive exactly
// one Result. Submitting to a stopped actor yields an error result. The
// inbox send happens outside the actor mutex, so a full inbox never blocks
// Stop.
func (a *Actor) Submit(cmd Command) <-chan Result {
	reply := make(chan Result, 1)
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		reply <- Result{Err: fmt.Errorf("engine: actor stopped")}
		return reply
	}
	stopCh := a.stopCh
	a.submitters.Add(1)
	a.mu.Unlock()
	defer a.submitters.Done()

	select {
	case a.inbox <- request{cmd: cmd, reply: reply}:
	case <-stopCh:
		reply <- Result{Err: fmt.Errorf("engine: actor stopped")}
	}
	return reply
}

// Execute submits a command and waits for its result.
func (a *Actor) Execute(cmd Command) Result {
	return <-a.Submit(cmd)
}

// processLoop applies commands in arrival order. Leftover inbox entries are
// answered by Stop's drain, after all submitters have finished enqueueing.
func (a *Actor) processLoop() {
	stopCh := a.stopCh
	for {
		select {
		case req := <-a.inbox:
			req.reply <- a.apply(req.cmd)
		case <-stopCh:
			return
		}
	}
}

func (a *Actor) drain() {
	for {
		select {
		case req := <-a.inbox:
			req.reply <- Result{Err: fmt.Errorf("engine: actor stopped")}
		default:
			return
		}
	}
}

func (a *Actor) apply(cmd Command) Result {
	e := a.engine
	switch cmd.Kind {
	case CmdTransfer:
		return Result{Err: e.Transfer(assetID(cmd.Asset), accountID(cmd.Caller), accountID(cmd.To), cmd.Amount)}
	case CmdDepositCollateral:
		return Result{Err: e.DepositCollateral(accountID(cmd.Caller), cmd.Amount, cmd.Amount2)}
	case CmdStake:
		minted, err := e.Stake(cmd.Vault, accountID(cmd.Caller), cmd.Amount)
		return Result{Value: minted, Err: err}
	case CmdUnstake:
		out, err := e.Unstake(cmd.Vault, accountID(cmd.Caller), cmd.Amount)
		return Result{Value: out, Err: err}
	case CmdAddRewards:
		return Result{Err: e.AddRewards(cmd.Vault, accountID(cmd.Caller), cmd.Amount)}
	case CmdClaim:
		paid, err := e.Claim(cmd.Vault, accountID(cmd.Caller))
		return Result{Value: paid, Err: err}
	default:
		return Result{Err: fmt.Errorf("engine: unknown command kind %q", cmd.Kind)}
	}
}

func assetID(s string) ledger.AssetID     { return ledger.AssetID(s) }
func accountID(s string) ledger.AccountID { return ledger.AccountID(s) }
