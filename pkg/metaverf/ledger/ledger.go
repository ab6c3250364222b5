package ledger

import (
	"context"
	"crypto/ed25519"
	"sync/atomic"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/program"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/registry"
	registry_mplcore "github.com/metaverf/metaverf-ledger/pkg/metaverf/registry/mplcore"
	metaverf_system "github.com/metaverf/metaverf-ledger/pkg/metaverf/system"
	metaverf_token "github.com/metaverf/metaverf-ledger/pkg/metaverf/token"
	"github.com/metaverf/metaverf-ledger/pkg/metrics"
	"github.com/metaverf/metaverf-ledger/pkg/solana"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
	"github.com/metaverf/metaverf-ledger/pkg/solana/mplcore"
	"github.com/metaverf/metaverf-ledger/pkg/solana/system"
	"github.com/metaverf/metaverf-ledger/pkg/solana/token"
	sync_util "github.com/metaverf/metaverf-ledger/pkg/sync"
)

// Result is the outcome of a transaction the ledger accepted for processing
type Result struct {
	Signature string
	Slot      uint64

	// Err is set when the transaction failed, in which case none of its writes
	// were persisted
	Err *solana.TransactionError
}

func (r *Result) Succeeded() bool {
	return r.Err == nil
}

// Ledger executes signed transactions against the account store. Each
// transaction runs against its own bank and either commits every write at a
// new slot or none of them.
type Ledger struct {
	log      *logrus.Entry
	conf     *conf
	store    account.Store
	programs *bank.Programs
	clock    Clock

	accountLocks *sync_util.StripedLock
	processed    *processedSignatures

	slot uint64
}

// New returns a Ledger hosting the system, token, associated token, asset
// registry and Metaverf programs. Certificates and collections are issued
// through the provided registry.
func New(ctx context.Context, store account.Store, collections registry.CollectionRegistry, clock Clock, configProvider ConfigProvider) (*Ledger, error) {
	conf := configProvider()

	latestSlot, err := store.GetLatestSlot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error getting latest slot")
	}

	programs := bank.NewPrograms()
	programs.Register(system.ProgramKey[:], metaverf_system.NewProcessor())
	programs.Register(token.ProgramKey, metaverf_token.NewProcessor())
	programs.Register(token.AssociatedTokenAccountProgramKey, metaverf_token.NewAssociatedProcessor())
	programs.Register(mplcore.PROGRAM_ID, registry_mplcore.NewProcessor())
	programs.Register(metaverf.PROGRAM_ID, program.NewProcessor(collections))

	return &Ledger{
		log:      logrus.StandardLogger().WithField("type", "metaverf/ledger"),
		conf:     conf,
		store:    store,
		programs: programs,
		clock:    clock,

		accountLocks: sync_util.NewStripedLock(uint(conf.lockStripes.Get(ctx))),
		processed:    newProcessedSignatures(int(conf.processedSignatureCacheSize.Get(ctx))),

		slot: latestSlot,
	}, nil
}

// Slot returns the slot of the most recently assigned transaction
func (l *Ledger) Slot() uint64 {
	return atomic.LoadUint64(&l.slot)
}

// Submit verifies and executes a transaction. Transaction level failures are
// reported through Result.Err. The returned error is reserved for failures of
// the ledger itself, such as an unavailable store.
func (l *Ledger) Submit(ctx context.Context, txn solana.Transaction) (*Result, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Submit")
	defer tracer.End()

	start := time.Now()

	result := &Result{}
	if len(txn.Signatures) > 0 {
		result.Signature = base58.Encode(txn.Signature())
	}

	log := l.log.WithFields(logrus.Fields{
		"method":    "Submit",
		"signature": result.Signature,
	})

	instructions, txnErr := l.sanitize(ctx, txn)
	if txnErr != nil {
		log.WithError(txnErr).Info("transaction rejected")
		result.Err = txnErr
		recordTransactionProcessedEvent(ctx, len(txn.Message.Instructions), txnErr, time.Since(start))
		return result, nil
	}

	writeKeys, readKeys := lockKeys(txn.Message)
	unlock := l.accountLocks.LockAll(writeKeys, readKeys)
	defer unlock()

	if l.processed.contains(result.Signature) {
		result.Err = solana.NewTransactionError(solana.TransactionErrorAlreadyProcessed)
		recordTransactionProcessedEvent(ctx, len(instructions), result.Err, time.Since(start))
		return result, nil
	}

	result.Slot = atomic.AddUint64(&l.slot, 1)
	log = log.WithField("slot", result.Slot)

	b := bank.New(l.store, result.Slot)
	now := l.clock.Now().Unix()

	for i, ix := range instructions {
		processor, ok := l.programs.GetProcessor(ix.Program)
		if !ok {
			result.Err = solana.TransactionErrorFromInstructionError(bank.ToInstructionError(i, bank.ErrUnsupportedProgramID))
			break
		}

		ic := bank.NewInstructionContext(b, l.programs, ix, now, l.log)
		if err := processor.Process(ctx, ic); err != nil {
			log.WithError(err).WithField("instruction", i).Info("instruction failed")
			result.Err = solana.TransactionErrorFromInstructionError(bank.ToInstructionError(i, err))
			break
		}
	}

	if result.Err == nil {
		err := b.Commit(ctx)
		switch {
		case err == nil:
			l.processed.add(result.Signature, result.Slot)
		case errors.Is(err, account.ErrStaleAccountState):
			log.WithError(err).Info("transaction lost a race on account state")
			result.Err = solana.NewTransactionError(solana.TransactionErrorAccountInUse)
		default:
			log.WithError(err).Warn("failure committing transaction")
			tracer.OnError(err)
			return nil, errors.Wrap(err, "error committing transaction")
		}
	}

	recordTransactionProcessedEvent(ctx, len(instructions), result.Err, time.Since(start))
	if result.Err != nil {
		log.WithError(result.Err).Info("transaction failed")
	} else {
		log.WithField("writes", len(b.Dirty())).Debug("transaction committed")
	}

	return result, nil
}

// sanitize runs the checks that need no account state: size, signatures and
// account references
func (l *Ledger) sanitize(ctx context.Context, txn solana.Transaction) ([]solana.Instruction, *solana.TransactionError) {
	if len(txn.Marshal()) > int(l.conf.maxTransactionSize.Get(ctx)) {
		return nil, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	if len(txn.Message.Instructions) == 0 {
		return nil, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	for _, key := range txn.Message.Accounts {
		if len(key) != ed25519.PublicKeySize {
			return nil, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}
	}

	if err := txn.VerifySignatures(); err != nil {
		return nil, solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}

	instructions := make([]solana.Instruction, len(txn.Message.Instructions))
	for i := range txn.Message.Instructions {
		ix, err := txn.Message.ResolveInstruction(i)
		if err != nil {
			return nil, solana.NewTransactionError(solana.TransactionErrorInvalidAccountIndex)
		}
		instructions[i] = ix
	}

	return instructions, nil
}

func lockKeys(m solana.Message) (writeKeys, readKeys [][]byte) {
	for i, key := range m.Accounts {
		if m.IsWritable(i) {
			writeKeys = append(writeKeys, key)
		} else {
			readKeys = append(readKeys, key)
		}
	}
	return writeKeys, readKeys
}
