package LBM2D

import (
	"github.com/notargets/golbm/utils"
)

// SetParallelDegree partitions the cell range and the fluid cell list over goroutines. It must
// be called after the type partitioned lists are built.
func (c *D2Q9) SetParallelDegree(ProcLimit int) {
	c.cellPartitions = utils.NewPartitionMap(utils.ParallelDegreeFor(ProcLimit, c.TotalSize), c.TotalSize)
	c.fluidPartitions = utils.NewPartitionMap(utils.ParallelDegreeFor(ProcLimit, len(c.fluidCells)), len(c.fluidCells))
	c.ParallelDegree = c.cellPartitions.ParallelDegree
}

// forEachCell applies f to every lattice index. Calls for different cells may run concurrently,
// and all have returned when forEachCell returns.
func (c *D2Q9) forEachCell(f func(idx int)) {
	c.cellPartitions.Run(func(np, kMin, kMax int) {
		for idx := kMin; idx < kMax; idx++ {
			f(idx)
		}
	})
}

// forEachFluidCell applies f to every fluid cell, with the same guarantees as forEachCell.
func (c *D2Q9) forEachFluidCell(f func(idx int)) {
	c.fluidPartitions.Run(func(np, kMin, kMax int) {
		for _, idx := range c.fluidCells[kMin:kMax] {
			f(idx)
		}
	})
}
