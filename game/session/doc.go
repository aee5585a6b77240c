// Package session provides the match registry for Flota.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Monotonic integer match identifiers
//   - Session lifecycle management and idle eviction
//
// Core Types:
//
// Manager is the registry. It stores service.Session values, each wrapping
// its own engine.Match together with the rules it was built with and
// creation/access times.
//
// Identifiers:
//
// Matches are numbered from 1 by an atomic counter. An identifier is taken
// only after the match has been built, so failed creations leave no gaps,
// and identifiers are never reused, not even after deletion or eviction.
//
// Concurrency:
//
// The map is guarded by a sync.RWMutex; lookups take the read lock. The
// registry never holds its lock while a match is probed: callers get the
// *Match pointer and the match serializes its own probes. A delete racing a
// probe resolves either way, and a probe that already holds the pointer
// completes normally.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create(10, 10, 5, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
