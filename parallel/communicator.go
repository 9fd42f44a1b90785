// Package parallel supplies the distributed-execution glue the FMM
// driver treats as an external collaborator (spec.md §4.5, §6): a
// transport contract (Communicator) plus the particle and node-data
// vtables the tree invokes at migration, forward-visit and
// backward-visit occasions. No MPI binding appears anywhere in the
// retrieved reference pack, so LocalCommunicator is an idiomatic Go
// stand-in built from goroutines and channels/condition variables,
// purely so the distributed pipeline (S3/S6) can be exercised by tests
// without a real MPI dependency; production users supply their own
// Communicator.
package parallel

import "sync"

// Communicator is the transport contract a Solver's ParallelConfig
// relies on: rank identity plus the two collective operations the
// shared-node forward/backward exchange is built from.
type Communicator interface {
	// Rank returns this process's rank, 0 <= Rank() < Size().
	Rank() int
	// Size returns the communicator's group size.
	Size() int
	// AllGather blocks until every rank has called AllGather for this
	// round, then returns every rank's payload indexed by rank. Calls
	// must happen in the same relative order on every rank (SPMD
	// usage), matching how the solver drives S3 and S6.
	AllGather(payload []byte) [][]byte
	// Barrier blocks until every rank has called Barrier.
	Barrier()
}

// localHub is the shared synchronization state a group of
// LocalCommunicator handles rendezvous through.
type localHub struct {
	mu      sync.Mutex
	cond    *sync.Cond
	size    int
	gen     int
	arrived int
	buffers [][]byte
}

func (h *localHub) barrier() {
	h.mu.Lock()
	myGen := h.gen
	h.arrived++
	if h.arrived == h.size {
		h.arrived = 0
		h.gen++
		h.cond.Broadcast()
	} else {
		for h.gen == myGen {
			h.cond.Wait()
		}
	}
	h.mu.Unlock()
}

// LocalCommunicator is a reference Communicator for a group of ranks
// running as goroutines within a single process.
type LocalCommunicator struct {
	rank int
	size int
	hub  *localHub
}

// NewLocalCommunicatorGroup returns size LocalCommunicator handles
// sharing one synchronization hub, one per simulated rank.
func NewLocalCommunicatorGroup(size int) []*LocalCommunicator {
	if size < 1 {
		size = 1
	}
	hub := &localHub{size: size}
	hub.cond = sync.NewCond(&hub.mu)
	out := make([]*LocalCommunicator, size)
	for i := range out {
		out[i] = &LocalCommunicator{rank: i, size: size, hub: hub}
	}
	return out
}

// Rank returns this handle's rank.
func (c *LocalCommunicator) Rank() int { return c.rank }

// Size returns the group's size.
func (c *LocalCommunicator) Size() int { return c.size }

// Barrier blocks until every rank in the group has called Barrier.
func (c *LocalCommunicator) Barrier() { c.hub.barrier() }

// AllGather posts payload for this rank, then blocks until every other
// rank has posted, returning all payloads indexed by rank.
func (c *LocalCommunicator) AllGather(payload []byte) [][]byte {
	h := c.hub

	h.mu.Lock()
	if h.buffers == nil {
		h.buffers = make([][]byte, h.size)
	}
	h.buffers[c.rank] = payload
	h.mu.Unlock()

	c.Barrier() // every rank has posted before any rank reads

	h.mu.Lock()
	out := make([][]byte, h.size)
	copy(out, h.buffers)
	h.mu.Unlock()

	c.Barrier() // every rank has read before the next round reuses buffers
	return out
}
