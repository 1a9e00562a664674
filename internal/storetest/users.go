package storetest

import (
	"context"

	"booking-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Users adds the identity lookups on top of Memory.
type Users struct {
	*Memory[models.User]
}

func NewUsers() *Users {
	return &Users{Memory: New[models.User]("email")}
}

func (u *Users) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return u.FindOne(ctx, bson.M{"email": email})
}

func (u *Users) FindByExternal(ctx context.Context, provider, authID string) (models.User, error) {
	return u.FindOne(ctx, bson.M{"authProvider": provider, "authId": authID})
}
