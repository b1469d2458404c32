// Package auth holds the principal checks guarding mutating operations.
package auth

import "github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/tipping"

// RequireSelf succeeds only when the caller is the target account.
func RequireSelf(caller, target string) error {
	if caller == "" || caller != target {
		return tipping.ErrUnauthorized
	}
	return nil
}

// RequireOwner succeeds only when the caller is the platform owner.
func RequireOwner(caller, owner string) error {
	if caller == "" || caller != owner {
		return tipping.ErrUnauthorized
	}
	return nil
}
