// Package license checks that source files carry the project's license
// header and that vendored code ships with a license file.
//
// Check walks a tree and reports three kinds of problems:
//   - missing-header: an included source file has no license marker in its
//     first lines
//   - unexpected-license: a LICENSE file at the root other than the allowed
//     ones, which usually means a second license slipped in
//   - vendor-unlicensed: a vendored source file with no LICENSE or COPYING
//     file in any of its directories inside the vendor tree
package license
