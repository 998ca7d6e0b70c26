// Package main runs the Seahorse friend registry: the shared store holding
// friend requests and each account's encrypted data slot.
//
// HTTP API
//
//	PUT /v1/requests/{id}
//	    Store a FriendRequest. {id} must be "<from>-<to>" of the body.
//
//	GET /v1/requests/{id}
//	    Return one FriendRequest, or 404.
//
//	GET /v1/requests?from=&to=&involving=&status=
//	    List requests matching every given filter.
//
//	PUT /v1/slots/{account}   {"data": "..."}
//	    Overwrite {account}'s encrypted slot.
//
//	GET /v1/slots/{account}
//	    Return {"data": "..."}, or 404.
//
//	DELETE /v1/requests/{id}, /v1/slots/{account}, /v1/accounts/{account}
//	    Delete one request, one slot, or everything touching an account.
//
//	GET /healthz, GET /metrics
//
// Behaviour
//
//   - With --data state is kept in a Badger database in that directory;
//     without it, state is held in memory and lost on exit.
//   - Responses are JSON. Non-2xx statuses carry {"error": "..."}.
//   - An access log records method, path, remote, status, bytes and
//     duration for each request.
//   - The default listen address is :8080.
//
// The registry is an untrusted middleman. It never sees plaintext or private
// keys; it stores public keys, wrapped keys and ciphertext only.
package main
