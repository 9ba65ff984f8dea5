/*
Package domain contains the core models shared by every Conduit component.

It defines the request/response vocabulary of the orchestrator, the typed failure
returned for every terminal outcome, the entities held by the reactive store, and
the lifecycle events emitted while a request runs. The package is kept free of I/O
so that adapters and the orchestrator can depend on it without cycles.

# Key Entities

  - RequestSpec: What a caller wants sent (path, method, headers, body, timeout).
  - Response: The envelope returned on success, carrying a Body tagged union.
  - APIError: The single failure type, classified by ErrorKind.
  - AppState, DataState, UIState: The records held by the store slices.
*/
package domain
