/*
Package http is a reference implementation of the project API that a Conduit
client consumes.

It serves projects, the four item registers (questions, risks, actions,
decisions), contacts and documents from memory, scopes every project-bound route
by the X-Project-Id header, and streams item changes over server-sent events.
A Faults injector can make the server answer with 429/503/504 or stall, which is
how the client's retry and timeout policy is exercised end to end.
*/
package http
