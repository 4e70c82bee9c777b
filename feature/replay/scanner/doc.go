// Package scanner lists replay files under the configured replay folder.
//
// FileScanner implements the batch enumeration used by full and incremental
// synchronization. NewestFileLocator serves only the single-file persist
// path after a game ends; keeping it apart from the Scanner contract keeps
// the exit transition provably free of batch enumeration.
package scanner
