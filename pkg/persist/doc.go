// Package persist captures and restores cell state across process
// restarts. Cells opt in with quanta.PersistKey; Capture collects a
// scope's keyed cells into a Snapshot, and Restore writes a Snapshot
// back into them.
//
// Snapshots travel through a Store. MemoryStore suits tests and
// single-process use; S3Store persists to an S3 bucket:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := persist.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "state/")
//
//	snap := persist.Capture(scope)
//	if err := store.Save(ctx, "user-42", snap); err != nil { ... }
package persist
