// Package preflight provides readiness checks for the filesystem paths,
// binaries, fonts and endpoints a render depends on.
//
// These checks run in two contexts:
//   - The pipeline calls RunAll before fetching any image. If a check fails
//     the run stops before spending time on network requests.
//   - The CLI "lyricvid check" command uses the individual check functions
//     (CheckImageEndpoint, CheckSystemDeps) to display readiness.
//
// RunAll never touches the network.
package preflight
