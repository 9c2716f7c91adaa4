// Package policy holds the pure access-control decisions over posts and
// profiles. No I/O happens here; callers fetch the resource first and
// translate decisions to errors or status codes.
package policy

import (
	"quill/internal/auth"
	"quill/internal/model"
)

// Decision is the outcome of an access-control check.
type Decision int

const (
	// Allow grants the operation.
	Allow Decision = iota
	// Forbidden denies the operation for a resolved identity with
	// insufficient rights.
	Forbidden
	// Unauthenticated denies the operation because no identity is resolved.
	Unauthenticated
)

// CanViewPost decides read access. Published posts are world-readable;
// drafts are visible to their author only. A draft answers Forbidden
// rather than pretending not to exist.
func CanViewPost(post *model.Post, viewer auth.Identity) Decision {
	if post.Published {
		return Allow
	}
	if !viewer.Anonymous() && viewer.UserID == post.AuthorID {
		return Allow
	}
	return Forbidden
}

// CanEditPost decides update/delete/publish access: author only.
func CanEditPost(post *model.Post, actor auth.Identity) Decision {
	if actor.Anonymous() {
		return Unauthenticated
	}
	if actor.UserID == post.AuthorID {
		return Allow
	}
	return Forbidden
}

// CanEditProfile decides whether actor may mutate the given user record:
// self only.
func CanEditProfile(userID uint, actor auth.Identity) Decision {
	if actor.Anonymous() {
		return Unauthenticated
	}
	if actor.UserID == userID {
		return Allow
	}
	return Forbidden
}
