// Package novapay implements the identity gate behind the NovaPay product
// page: local account enrollment, password-verification hashing, session
// persistence across visits, and the auth-state projection that decides
// whether a visitor may continue to checkout.
//
// Storage model:
//   - All durable state lives in a string-keyed blob Storage (the demo's
//     analog of browser local storage). Accounts are one JSON array blob,
//     the session marker is a second independent blob. Corrupted blobs are
//     downgraded to "no data" at the store boundary; nothing in this
//     package treats bad persisted state as fatal.
//
// Trust model:
//   - There is no trust boundary. Credentials live entirely in one local
//     storage instance, discoverable and forgeable by the same client.
//     Digests exist so equal passwords do not produce equal stored values,
//     not to resist an attacker who owns the storage.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by AuthController
//     to describe signup, login, logout, and checkout events. Sinks run
//     best-effort (errors are logged) so you can forward events without
//     blocking the auth flow.
package novapay
