// Package twitch wraps the three Helix calls this service depends on:
// the client-credentials token exchange, the login → broadcaster ID lookup
// and the clips listing. Every call runs under its own bounded timeout and
// any failure here is a precondition failure for the whole request, never a
// per-item one. Base URLs are injectable so tests can point the client at
// httptest servers.
package twitch
