package parallel

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestLocalCommunicatorAllGatherCollectsEveryRank(t *testing.T) {
	const n = 4
	comms := NewLocalCommunicatorGroup(n)

	var wg sync.WaitGroup
	results := make([][][]byte, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = comms[i].AllGather([]byte(fmt.Sprintf("rank%d", i)))
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if len(results[i]) != n {
			t.Fatalf("rank %d saw %d payloads, want %d", i, len(results[i]), n)
		}
		var got []string
		for _, b := range results[i] {
			got = append(got, string(b))
		}
		sort.Strings(got)
		want := []string{"rank0", "rank1", "rank2", "rank3"}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("rank %d gathered %v, want %v", i, got, want)
			}
		}
	}
}

func TestLocalCommunicatorBarrierReleasesAllGoroutines(t *testing.T) {
	const n = 6
	comms := NewLocalCommunicatorGroup(n)

	var wg sync.WaitGroup
	done := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			comms[i].Barrier()
			done[i] = true
		}(i)
	}
	wg.Wait()

	for i, d := range done {
		if !d {
			t.Fatalf("rank %d never returned from Barrier", i)
		}
	}
}

func TestLocalCommunicatorSupportsRepeatedRounds(t *testing.T) {
	const n = 3
	comms := NewLocalCommunicatorGroup(n)

	for round := 0; round < 3; round++ {
		var wg sync.WaitGroup
		results := make([][][]byte, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = comms[i].AllGather([]byte{byte(round), byte(i)})
			}(i)
		}
		wg.Wait()
		for i := 0; i < n; i++ {
			if len(results[i]) != n {
				t.Fatalf("round %d rank %d: got %d payloads, want %d", round, i, len(results[i]), n)
			}
		}
	}
}
