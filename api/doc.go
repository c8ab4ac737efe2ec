// Package api exposes the retrieval service over HTTP.
//
// The surface is deliberately small: a health check, an answer endpoint
// returning the retrieval envelope verbatim, and a queue statistics
// endpoint for external monitoring of the ingestion backlog. Uploads and
// worker control stay on the CLI.
package api
