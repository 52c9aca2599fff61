// Package corpus loads the safe and toxic partitions into one normalized,
// read-only plant corpus.
//
// A Loader moves through three states: Uninitialized, Loading and Ready.
// The first Load starts the fetch; callers arriving while it runs wait on
// the same load, and callers arriving afterwards get the cached result.
// Partitions are fetched concurrently on a worker pool.
//
// A partition that cannot be fetched or parsed contributes no records. The
// load still completes, and the LoadResult reports it as degraded together
// with the cause.
package corpus
