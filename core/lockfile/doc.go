// Package lockfile manages the two process-local coordination files of the
// sync engine: the exclusive lock file that prevents two instances from
// syncing the same store, and the validation timestamp that rate-limits
// periodic folder re-checks.
//
// Both files hold plain text, no schema. The lock is advisory (flock) so a
// crashed process never leaves the store permanently locked.
package lockfile
