/*
Package store holds the reactive in-memory state of a Conduit client.

State is split into independent slices (App, Data, UI). Each slice owns an
immutable record; the only way to produce a new record is through the slice's
mutators, which replace the value wholesale and notify subscribers with the
complete new value, in subscription order, before returning.

Values handed out by Get or delivered to subscribers are copies: callers never
hold a reference into the slice's own memory.
*/
package store
