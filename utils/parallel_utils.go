package utils

import (
	"runtime"
	"sort"
	"sync"
)

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

// DefaultParallelDegree picks a partition count for maxIndex items that
// keeps at least minChunk items in each partition, capped at GOMAXPROCS
func DefaultParallelDegree(maxIndex, minChunk int) (np int) {
	np = runtime.GOMAXPROCS(0)
	if minChunk > 0 {
		np = min(np, maxIndex/minChunk)
	}
	np = max(np, 1)
	return
}

// BucketOf returns the partition holding index k, or -1 when k is out of range
func (pm *PartitionMap) BucketOf(k int) (bn int) {
	if k < 0 || k >= pm.MaxIndex {
		return -1
	}
	return sort.Search(pm.ParallelDegree, func(b int) bool { return pm.Partitions[b][1] > k })
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

// Run calls fn once per partition and waits for all of them. With a single
// partition fn runs on the calling goroutine.
func (pm *PartitionMap) Run(fn func(bn, kMin, kMax int)) {
	if pm.ParallelDegree == 1 {
		fn(0, pm.Partitions[0][0], pm.Partitions[0][1])
		return
	}
	var wg sync.WaitGroup
	for bn := 0; bn < pm.ParallelDegree; bn++ {
		wg.Add(1)
		go func(bn int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(bn)
			fn(bn, kMin, kMax)
		}(bn)
	}
	wg.Wait()
}
