// Package pools provides object pooling for reducing GC pressure.
//
// This package contains pool implementations for scratch structures. No
// other package of the module imports it; the partitioner's phases allocate
// their own scratch space.
//
//   - BytePool: Size-class based byte slice pooling
//   - SlicePool: Pooling for ID and weight scratch slices
//   - RatingMapPool: Pooling for small cluster-rating maps
//   - BufferBuilder: Efficient buffer construction with pooling
package pools
