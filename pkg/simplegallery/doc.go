// Package simplegallery is a multi-user gallery/post/comment store with a
// two-stage deletion lifecycle.
//
// Every registered user owns a partition holding their galleries, posts, and
// comments, but all users share one global namespace: anyone can post into
// anyone's gallery and comment on anyone's post. Mutations are gated on the
// partition owner or an admin. Deleting an entity sets a tombstone and
// cascades to dependents (gallery deletion tombstones its posts); restoring
// undoes exactly the cascade; purging removes an entity and its dependents
// for good.
//
// Construct a Service with New and a Repository implementation:
//
//	svc, err := simplegallery.New(
//	    simplegallery.WithRepository(memory.New()),
//	    simplegallery.WithEventSink(simplegallery.NewLoggingEventSink(nil)),
//	)
//
// The whole store can be exported and imported as a versioned Document for
// backup, restore, and migration between repository backends.
package simplegallery
