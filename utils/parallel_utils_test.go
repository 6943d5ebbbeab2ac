package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	for _, tc := range []struct {
		maxIndex, degree int
	}{
		{2, 32}, {32, 32}, {256, 32}, {287, 32}, {1000, 5}, {9999, 7}, {10, 1},
	} {
		var (
			pm    = NewPartitionMap(tc.degree, tc.maxIndex)
			sizes = make([]int, pm.ParallelDegree)
			next  int
		)
		for bn := range sizes {
			kMin, kMax := pm.GetBucketRange(bn)
			assert.Equal(t, next, kMin, "partitions are contiguous")
			sizes[bn] = kMax - kMin
			next = kMax
			for k := kMin; k < kMax; k++ {
				assert.Equal(t, bn, pm.BucketOf(k))
			}
		}
		assert.Equal(t, tc.maxIndex, next)
		// Sizes differ by at most one, larger partitions first
		assert.LessOrEqual(t, sizes[0]-sizes[len(sizes)-1], 1)
		for bn := 1; bn < len(sizes); bn++ {
			assert.LessOrEqual(t, sizes[bn], sizes[bn-1])
		}
		assert.Equal(t, -1, pm.BucketOf(-1))
		assert.Equal(t, -1, pm.BucketOf(tc.maxIndex))
	}
	{ // Degree is never below one
		assert.Equal(t, 1, NewPartitionMap(0, 10).ParallelDegree)
		assert.Equal(t, 1, DefaultParallelDegree(10, 4096))
		assert.GreaterOrEqual(t, DefaultParallelDegree(1<<20, 0), 1)
	}
}

func TestPartitionMapRun(t *testing.T) {
	for _, np := range []int{1, 3, 8} {
		var (
			n   = 1001
			pm  = NewPartitionMap(np, n)
			out = make([]int, n)
		)
		pm.Run(func(bn, kMin, kMax int) {
			for k := kMin; k < kMax; k++ {
				out[k] += k + 1
			}
		})
		for k := range out {
			assert.Equal(t, k+1, out[k])
		}
	}
}
