/*
Package request implements the Conduit request orchestrator.

Every read and write the application performs goes through an Orchestrator. For each
attempt it merges default, context and caller headers, runs the registered request
interceptors in order, enforces a per-attempt deadline, executes the transfer, decodes
the body once into a domain.Body, and classifies the outcome:

  - 2xx: response interceptors run in order and the envelope is returned.
  - 401/403: the AuthHandler is told, and the request fails without retry.
  - 429: retried after Retry-After (default 5s), at most 3 times.
  - 503/504 and connectivity failures: retried with exponential backoff,
    RetryDelay × 2^k, at most RetryCount times.
  - Timeouts fail immediately with "Request timed out".

Rate-limit and transient retries draw from two independent budgets; RequestSpec.Attempt
counts every attempt across both.

Every terminal failure is a *domain.APIError.
*/
package request
