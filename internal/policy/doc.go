// Package policy builds and patches the IAM documents the deploy trust
// chain runs on.
//
// Three substitution modes exist and stay deliberately distinct: the trust
// document is patched structurally (parsed into typed statements, principal
// and subject conditions replaced, serialized back), the permission document
// is patched by literal placeholder replacement, and workflow files are
// patched line by line without parsing them. Every mode is a pure function;
// writing the result anywhere is the caller's job.
//
// Substitution is all-or-nothing. A placeholder with no value, or a line
// pattern that never matched, fails with IncompleteSubstitutionError before
// the document can reach the provider half-filled.
package policy
