// Package ratelimit paces outgoing requests.
//
// TokenBucket grants a fixed number of requests per refill period and makes
// callers wait for the next period once the bucket is empty. There is no
// backoff: a limiter only spaces requests out, it never retries them.
package ratelimit
