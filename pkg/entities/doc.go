/*
Package entities implements the domain operations a client performs against the
project API: loading projects and the project-scoped collections, and creating,
updating and deleting register items.

Mutations are optimistic. The store is updated before the request is sent and
rolled back if it fails; on success an undo entry is recorded whose effects
replay the inverse (or original) request and store update. Request failures are
already surfaced to the user by the orchestrator, so this package only logs them.
*/
package entities
