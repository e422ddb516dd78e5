// Package redis connects the optional cache used by the service.
//
// The cache is off unless REDIS_URL is set. When it is on, Connect retries the
// initial ping and Healthcheck feeds the /health endpoint.
package redis
