// Package authz holds the ownership predicate shared by every domain's
// mutation path. It is deliberately a standalone pure function rather than a
// method on some common entity base type, so the three domains stay decoupled.
package authz

// CanMutate reports whether requesterID may mutate a resource owned by
// resourceOwnerID. Ownership is exact identity; there is no admin override.
func CanMutate(resourceOwnerID, requesterID string) bool {
	return resourceOwnerID != "" && resourceOwnerID == requesterID
}
