// Package httpapi serves the token lifecycle over HTTP.
//
// Routes:
//
//	POST   /login            issue or reuse a token for (user, client)
//	POST   /refresh          push the current token's expiry out
//	POST   /logout           revoke the current token
//	POST   /logoutall        revoke every token of the current user
//	GET    /sessions         list the user's live sessions
//	DELETE /sessions/{id}    revoke one session by record ID
//	GET    /apiaccess        inspect the personal API token
//	POST   /apiaccess        issue the personal API token
//	DELETE /apiaccess        revoke the personal API token
//
// Everything except /login requires a valid bearer token. Error bodies
// are always {"detail": "..."} with the status carrying the semantics.
package httpapi
