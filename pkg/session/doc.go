/*
Package session serializes access to wizard sessions.

Every read-modify-write of a session runs under a per-session lock. Local locks
are reference counted; an optional ports.DistributedLocker extends the guarantee
across replicas sharing a store.
*/
package session
