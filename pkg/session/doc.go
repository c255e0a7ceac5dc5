// Package session manages in-memory conversation sessions.
//
// Invariants:
// - Session ids are unique for the lifetime of the store.
// - last_activity never precedes created_at.
// - Messages keep strict append order; concurrent appends never lose entries.
// - Readers observe a session either fully or not at all, never half-built.
//
// Usage:
//
//	store := session.NewStore()
//	sess := store.Create()
//	store.TouchAndAppend(sess.ID, session.Message{Role: session.RoleUser, Content: "hello"})
//	hist, err := store.Get(sess.ID)
package session
