// Package workerpool provides a bounded pool for background jobs.
//
// Scheduled work (snapshot reconciliation, daily backups) and operator
// triggered work (manual sync) all run through the same pool, so the
// number of concurrent heavy jobs is capped regardless of how they were
// started. HTTP handlers submit and return; they never wait on a job.
package workerpool
