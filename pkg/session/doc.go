/*
Package session ties a client's reactive store, local cache and undo history to
the signed-in user and the selected project.

Selecting a project persists it in the cache so that the next start can restore
it without a round trip, and resets the project-scoped state: data and UI slices
are cleared and the undo history is dropped, since its effects target the
previous project. Signing out resets everything.
*/
package session
