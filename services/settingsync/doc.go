// Package settingsync reconciles the server-held global configuration, an
// optional per-profile override and the editable, string-typed mirror that
// settings widgets bind to.
//
// Data flows in one direction per event: a document refresh rebuilds the
// Mirror (BuildMirror), user edits replace it one leaf at a time (SetField,
// Update*, Add*, Remove*, Move*), and a save validates the active tab
// (Validate) before converting the Mirror back into a typed payload (Commit).
// Session owns the mirror together with its dirty flag and error map.
package settingsync
