// Package password hashes and verifies user passwords with Argon2id.
//
// Hashes use the PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// so parameters travel with the hash and can be strengthened over time
// without invalidating stored credentials.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive
//     hashes.
//   - Log plaintext passwords.
package password
