package state

import (
	"sync"

	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/types"
)

// AddressGenerator produces the deterministic stream of fresh addresses an
// execution allocates purses and entities from. Two generators built from
// the same seed produce the same stream, which is what makes address
// allocation reproducible across nodes.
type AddressGenerator struct {
	lock    sync.Mutex
	seed    common.Hash
	counter uint64
}

func NewAddressGenerator(seed []byte) *AddressGenerator {
	return &AddressGenerator{seed: common.HashOf(seed)}
}

// NextAddress returns the next address of the stream.
func (g *AddressGenerator) NextAddress() types.Address {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.counter++
	e := types.NewEncoder()
	e.PutFixed(g.seed[:])
	e.PutU64(g.counter)
	hash := common.HashOf(e.Bytes())
	return types.AddressFromBytes(hash[:])
}
