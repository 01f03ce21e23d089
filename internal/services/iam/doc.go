// Package iam decides who is making a request.
//
// Request flow:
//
//	Authorization header
//	  → auth.ExtractCredentials (Basic | Bearer | none)
//	  → CredentialValidator (Basic) or auth.TokenVerifier (Bearer)
//	  → Checker: admit with an auth.Principal, or deny
//	  → Resolver: principal → persisted models.User (created on first sight)
//
// The Checker never returns errors; every failure becomes a logged denial.
// The Resolver returns errors because a failing store is a server fault,
// not a denial.
package iam
