// Package proxy holds the inbound HTTP contract of the completion server:
// body parsing and JSON-Schema validation, conversion into a
// providers.CompletionRequest, and the mapping from classified errors to
// the error envelope and HTTP status.
//
// Error mapping:
//
//	rate_limit_exceeded   429 (Retry-After echoed when the upstream sent one)
//	authentication_error  401
//	authorization_error   403
//	canceled              499
//	timeout               500
//	invalid_request       400
//	everything else       500
//
// The handlers live in the handlers subpackage and the middleware in
// middleware; the server package wires them together.
package proxy
