// Package mapreduce is a local, share-nothing stage runner with Hadoop
// job semantics: line-oriented input split across parallel map tasks, a
// shuffle that groups emitted records by key, and a bounded set of
// reduce tasks writing one part file each.
//
// Every task gets a fresh Mapper or Reducer instance from the job's
// factory, so task state never leaks across partitions. A job may name a
// broadcast directory whose contents are delivered to every map task
// once, at setup, before any record is processed; a broadcast that
// cannot be loaded fails the job rather than running without it.
package mapreduce
