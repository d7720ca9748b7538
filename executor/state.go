package executor

import (
	"math/big"
	"sync"

	"go.dedis.ch/nova/abi"
	"go.dedis.ch/protobuf"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"
)

var stateBucket = []byte("nova-state")
var stateKey = []byte("snapshot")

// State is the world state the simulator executes against: the native
// balance of every account and a key/value storage per contract. It is
// safe for concurrent use. A State is either purely in-memory or backed
// by a bbolt file, in which case Flush writes a protobuf snapshot of
// the whole state.
type State struct {
	sync.RWMutex
	balances map[abi.Address]*big.Int
	storage  map[abi.Address]map[string][]byte
	db       *bolt.DB
}

// Snapshot entries, flattened into lists so the whole state can be
// serialized with protobuf.
type balanceEntry struct {
	Address []byte
	Amount  []byte
}

type storageEntry struct {
	Address []byte
	Key     []byte
	Value   []byte
}

type stateSnapshot struct {
	Balances []balanceEntry
	Storage  []storageEntry
}

// NewState returns an empty in-memory world state.
func NewState() *State {
	return &State{
		balances: make(map[abi.Address]*big.Int),
		storage:  make(map[abi.Address]map[string][]byte),
	}
}

// OpenState returns a world state backed by the bbolt file at the given
// path, loading the snapshot a previous run flushed there.
func OpenState(path string) (*State, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, xerrors.Errorf("opening state db: %v", err)
	}

	st := NewState()
	st.db = db

	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(stateBucket)
		if bucket == nil {
			return nil
		}
		buf := bucket.Get(stateKey)
		if buf == nil {
			return nil
		}
		return st.restore(buf)
	})
	if err != nil {
		db.Close()
		return nil, xerrors.Errorf("loading state snapshot: %v", err)
	}

	return st, nil
}

// Flush writes the current snapshot to the backing file. It is an error
// to flush a purely in-memory state.
func (st *State) Flush() error {
	if st.db == nil {
		return xerrors.New("state has no backing db")
	}

	buf, err := st.snapshot()
	if err != nil {
		return xerrors.Errorf("encoding state snapshot: %v", err)
	}

	return st.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(stateBucket)
		if err != nil {
			return xerrors.Errorf("creating state bucket: %v", err)
		}
		return bucket.Put(stateKey, buf)
	})
}

// Close releases the backing file, if any.
func (st *State) Close() error {
	if st.db == nil {
		return nil
	}
	return st.db.Close()
}

func (st *State) snapshot() ([]byte, error) {
	st.RLock()
	defer st.RUnlock()

	var snap stateSnapshot
	for addr, amount := range st.balances {
		snap.Balances = append(snap.Balances, balanceEntry{
			Address: addr.Slice(),
			Amount:  amount.Bytes(),
		})
	}
	for addr, entries := range st.storage {
		for key, value := range entries {
			snap.Storage = append(snap.Storage, storageEntry{
				Address: addr.Slice(),
				Key:     []byte(key),
				Value:   value,
			})
		}
	}

	return protobuf.Encode(&snap)
}

func (st *State) restore(buf []byte) error {
	var snap stateSnapshot
	if err := protobuf.Decode(buf, &snap); err != nil {
		return xerrors.Errorf("decoding snapshot: %v", err)
	}

	st.Lock()
	defer st.Unlock()

	for _, e := range snap.Balances {
		addr, err := abi.NewAddress(e.Address)
		if err != nil {
			return xerrors.Errorf("snapshot balance: %v", err)
		}
		st.balances[addr] = new(big.Int).SetBytes(e.Amount)
	}
	for _, e := range snap.Storage {
		addr, err := abi.NewAddress(e.Address)
		if err != nil {
			return xerrors.Errorf("snapshot storage: %v", err)
		}
		if st.storage[addr] == nil {
			st.storage[addr] = make(map[string][]byte)
		}
		st.storage[addr][string(e.Key)] = e.Value
	}

	return nil
}

// Balance returns the native balance of an account, zero when the
// account was never seen.
func (st *State) Balance(addr abi.Address) *big.Int {
	st.RLock()
	defer st.RUnlock()

	amount, ok := st.balances[addr]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(amount)
}

// Credit adds the given amount to an account's balance.
func (st *State) Credit(addr abi.Address, amount *big.Int) {
	st.Lock()
	defer st.Unlock()

	current, ok := st.balances[addr]
	if !ok {
		current = new(big.Int)
		st.balances[addr] = current
	}
	current.Add(current, amount)
}

// transfer moves native value between two accounts, failing when the
// sender's balance is too low.
func (st *State) transfer(from, to abi.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}

	st.Lock()
	defer st.Unlock()

	current, ok := st.balances[from]
	if !ok {
		current = new(big.Int)
	}
	if current.Cmp(amount) < 0 {
		return xerrors.Errorf("insufficient funds: %s has %s, needs %s",
			from, current, amount)
	}
	current.Sub(current, amount)
	st.balances[from] = current

	dest, ok := st.balances[to]
	if !ok {
		dest = new(big.Int)
		st.balances[to] = dest
	}
	dest.Add(dest, amount)

	return nil
}

// Get returns the stored value of a contract's storage key, nil when
// unset.
func (st *State) Get(contract abi.Address, key []byte) []byte {
	st.RLock()
	defer st.RUnlock()

	return st.storage[contract][string(key)]
}

// Set stores a value under a contract's storage key.
func (st *State) Set(contract abi.Address, key, value []byte) {
	st.Lock()
	defer st.Unlock()

	if st.storage[contract] == nil {
		st.storage[contract] = make(map[string][]byte)
	}
	st.storage[contract][string(key)] = value
}

// clone returns a deep in-memory copy, used to run queries without
// touching the committed state.
func (st *State) clone() *State {
	st.RLock()
	defer st.RUnlock()

	out := NewState()
	for addr, amount := range st.balances {
		out.balances[addr] = new(big.Int).Set(amount)
	}
	for addr, entries := range st.storage {
		out.storage[addr] = make(map[string][]byte, len(entries))
		for key, value := range entries {
			out.storage[addr][key] = value
		}
	}
	return out
}
