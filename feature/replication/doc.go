// Package replication drives incremental replication between two buckets.
//
// A Service owns one bucket pair. Each round it loads the pair's checkpoint, runs one
// diff round, turns the outcome into a Plan and, when confirmed, applies it: keys only in
// the first bucket are copied, newer versions are replayed oldest first, and keys only in
// the second bucket are deleted or reported according to the configured policy. The new
// diff state is saved only after the plan was applied, so a failed round is simply run
// again.
//
// Rounds of one pair never overlap. Fatal errors (a missing bucket, a listing that broke
// key order) are recorded in the checkpoint and block the pair until it is reset.
//
// # Routes
//
//	GET    /replication/status
//	GET    /replication/preflight
//	POST   /replication/round?apply=true
//	POST   /replication/run?max_rounds=100&apply=true
//	DELETE /replication/checkpoint
package replication
