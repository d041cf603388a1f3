// Package policy decides which actor may perform which action on which resource.
package policy

import "github.com/moviestore/rental-api/internal/core/domain"

type Resource string

const (
	Genre  Resource = "genre"
	Movie  Resource = "movie"
	Rental Resource = "rental"
	User   Resource = "user"
)

type Action string

const (
	List          Action = "list"
	Retrieve      Action = "retrieve"
	Create        Action = "create"
	PartialUpdate Action = "partial_update"
	Destroy       Action = "destroy"
	Library       Action = "library"
)

// CheckCollection gates an action before any object is loaded.
// Anonymous callers always get ErrUnauthenticated.
func CheckCollection(res Resource, act Action, actor *domain.Actor) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	switch res {
	case Genre, Movie:
		switch act {
		case Create, PartialUpdate, Destroy:
			return require(actor.IsAdmin())
		default:
			return nil
		}
	case Rental:
		if act == Destroy {
			return require(actor.IsAdmin())
		}
		return nil
	case User:
		return require(actor.IsAdmin())
	}
	return domain.ErrPermissionDenied
}

// CheckObject gates an action on a loaded object owned by ownerUUID.
// Only rentals have owners; other resources fall back to CheckCollection.
func CheckObject(res Resource, act Action, actor *domain.Actor, ownerUUID string) error {
	if res != Rental {
		return CheckCollection(res, act, actor)
	}
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	switch act {
	case Create:
		return nil
	case Destroy:
		return require(actor.IsAdmin())
	default:
		return require(actor.IsAdmin() || actor.Owns(ownerUUID))
	}
}

func require(ok bool) error {
	if ok {
		return nil
	}
	return domain.ErrPermissionDenied
}
