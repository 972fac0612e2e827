// Package cli is the interactive GophTasks terminal client.
//
// The client keeps a current "page" (/signin, /dashboard, /tasks, ...) and
// moves between pages through the same guard.Policy the server uses for
// page loads: protected pages send an anonymous user to /signin with the
// requested page remembered, and signing in continues there.
//
// Commands are read line by line from stdin; passwords are read without
// echo and wiped after use. App.Run blocks until the user exits.
package cli
