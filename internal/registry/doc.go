// Package registry implements the shared friend registry: friend request
// records keyed "<from>-<to>" and one encrypted data slot per account.
//
// Backends:
//   - Memory: process-local maps, for tests and development
//   - Badger: durable embedded store used by the registry service
//   - HTTPClient: talks to a registry service over HTTP
//
// Server exposes any backend over HTTP:
//
//	PUT    /v1/requests/{id}          store a FriendRequest (id must be "<from>-<to>")
//	GET    /v1/requests/{id}          fetch one request, 404 when absent
//	DELETE /v1/requests/{id}
//	GET    /v1/requests?from=&to=&involving=&status=
//	PUT    /v1/slots/{account}        body {"data": "<packet json>"}
//	GET    /v1/slots/{account}        {"data": ...}, 404 when absent
//	DELETE /v1/slots/{account}
//	DELETE /v1/accounts/{account}     drop every request touching account and its slot
//	GET    /healthz
//	GET    /metrics                   Prometheus exposition
//
// The registry is an untrusted middleman. It only ever stores public keys,
// wrapped keys and ciphertext, and it applies no protocol rules of its own.
// Callers are identified by the account id they present.
package registry
