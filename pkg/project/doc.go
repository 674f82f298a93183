// Package project detects characteristics of a software project: size,
// languages, frameworks, team shape from git history, and toolchain markers.
//
// Detection is best-effort. Unreadable files and failed git invocations
// produce partial attribute sets, never errors.
package project
