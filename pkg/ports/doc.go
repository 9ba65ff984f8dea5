/*
Package ports defines the driven ports (interfaces) for Conduit.

These interfaces decouple the orchestrator and the session layer from concrete
collaborators, so storage backends, notification sinks and the authentication
subsystem can be swapped or faked in tests.

# Key Interfaces

  - KVBackend: Raw byte storage underneath the local key-value cache.
  - Notifier: The toast side channel used to surface user-visible errors.
  - AuthHandler: Receives 401/403 outcomes so the session can re-authenticate.
  - ContextSource: Supplies the active project identifier for every request.
*/
package ports
