/*
Package s3rest signs and dispatches ad hoc REST requests against
S3-compatible object storage endpoints using AWS Signature Version 4,
without a vendor SDK.

A request flows strictly forward through the engine: a RequestSpec is
normalised into a canonical request, a scoped signing key is derived from
the credentials through a fixed HMAC chain, the signature is attached as
an Authorization header (or as query parameters for presigned URLs), the
request is dispatched in a single attempt, and the Response exposes the
status, headers, raw body and XML path queries over the result.

Each signing and dispatch cycle is self-contained with no shared mutable
state, so a Client may be used concurrently as long as its configuration
is treated as immutable while requests are in flight. Payload hashing
requires the full payload in memory; callers dispatching very large
payloads concurrently must budget for that.

Credentials are always supplied explicitly. There is no discovery chain,
no automatic retry and no signature version other than V4.
*/
package s3rest
