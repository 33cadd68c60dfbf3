package utils

import (
	"runtime"
	"sync"
)

// PartitionMap splits the index range [0, MaxIndex) into ParallelDegree contiguous buckets
// with a maximum imbalance of one item between buckets.
type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// ParallelDegreeFor picks the number of goroutines used for an index range of size maxIndex.
// A ProcLimit of zero means one per CPU. Short ranges are not worth splitting.
func ParallelDegreeFor(ProcLimit, maxIndex int) (NP int) {
	if ProcLimit > 0 {
		NP = ProcLimit
	} else {
		NP = runtime.NumCPU()
	}
	if NP > maxIndex {
		NP = 1
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into c.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

// Run calls f once per bucket, each in its own goroutine, and returns when all have finished.
// With a single bucket f runs on the calling goroutine.
func (pm *PartitionMap) Run(f func(np, kMin, kMax int)) {
	if pm.ParallelDegree == 1 {
		f(0, 0, pm.MaxIndex)
		return
	}
	var (
		wg = sync.WaitGroup{}
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			kMin, kMax := pm.GetBucketRange(np)
			f(np, kMin, kMax)
			wg.Done()
		}(np)
	}
	wg.Wait()
}
