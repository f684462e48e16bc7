// Package cli provides the command-line interface for the Akili LMS.
//
// The cli package implements all lmsctl commands:
//   - login, logout, whoami: manage the stored session
//   - register: create a learner account
//   - config: display the effective configuration and its sources
//   - modules, materials, quizzes, certificates, assignments, users:
//     list (paginated, filtered), get, create, update and delete records
//   - modules show: a module with its document, media and quiz counts
//   - my modules|certificates|assignments: the signed-in learner's records
//   - enroll: enroll in a module
//   - quiz answer|results: submit quiz answers and review results
//   - progress: module progress, optionally from the local cache
//   - version: show lmsctl version
//
// Every command honours --json: only the JSON result is written to stdout.
// Deletes ask for confirmation on a terminal; without one they are declined
// unless --yes is given.
package cli
