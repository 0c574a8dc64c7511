// Package hashagg provides append-only aggregation hash tables and parallel
// GROUP BY strategies built on them.
//
// Tables:
//   - Table: growable open-addressing table with quadratic probing over a
//     power-of-two slot array. Single owner.
//   - BoundedTable: capped probe length and capped growth. Put reports
//     overflow instead of growing past its maximum capacity. Single owner.
//   - LockedTable: fixed capacity, one lock bit per slot, safe for
//     concurrent Put and Get.
//
// Inserting an existing key merges the stored and new values with an
// associative, commutative MergeFunc (Sum by default), so the final value of
// a key does not depend on insertion order.
//
// Aggregator composes the tables into the strategies IndependentMerge,
// GlobalLocked, PartitionedOverflow and LocalGlobal, plus the SingleThread
// and ConcurrentMap baselines. Each worker is assigned a contiguous range of
// the input rows.
//
// Example:
//
//	agg := hashagg.NewSumAggregator[int64, int64](hashagg.WithThreads(8))
//	res, err := agg.Run(hashagg.PartitionedOverflow, keys, nil) // COUNT(*)
//	if err != nil {
//		return err
//	}
//	n := res.Len()
package hashagg
