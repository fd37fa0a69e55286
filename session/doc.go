// Package session persists the single current refresh token per user in
// Redis, under "<prefix>:refresh:<userID>" with a TTL equal to the refresh
// token lifetime.
//
// A refresh token is live only while it textually equals the stored value;
// rotation replaces the value atomically with a compare-and-set Lua script
// so that concurrent refreshes with the same token produce exactly one
// winner. Overwriting the key implicitly revokes any previous token.
//
// # Architecture boundaries
//
// This package owns the refresh keyspace and nothing else. It does NOT
// parse or verify tokens and makes no authentication decisions; those
// belong to the Engine.
package session
