/*
Package undo implements a linear undo/redo history of reversible operations.

Each Entry carries a Forward and a Backward effect. Undo runs the newest entry's
Backward effect and moves it to the redo stack; Redo runs Forward and moves it
back. A failing effect leaves the entry where it was, so the user can retry.
Pushing a new entry clears the redo stack: history never branches.

The undo stack is bounded (50 entries by default); the oldest entry is dropped
first when it overflows.
*/
package undo
