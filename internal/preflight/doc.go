// Package preflight provides readiness checks for the credentials,
// filesystem paths, and external tools that scribe depends on.
//
// These checks run in two contexts:
//   - "scribe run" calls CheckCredential before touching the inbox so a
//     missing API key aborts before any file is moved.
//   - The CLI "scribe status" command uses RunAll and CheckSystemDeps to
//     display overall readiness.
//
// Tool checks are gated by config toggles; the fetch binary is only
// reported when the fetch phase is enabled.
package preflight
