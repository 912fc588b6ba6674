// Package history records render runs in SQLite.
//
// Every render inserts a row when it starts and updates it when it ends,
// so interrupted runs remain visible with status "running". The history
// command lists the most recent rows.
//
// Schema changes bump schemaVersion in schema.go; users delete the database
// to adopt the new schema.
package history
