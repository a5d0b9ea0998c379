// Package store persists assembled documents as UTF-8 text files.
//
// Files are written atomically: the body goes to a temporary file in the
// destination directory, which is synced and renamed over the target. A
// reader never sees a partially written document.
package store
