package auth

import (
	"context"
)

type ctxkey string

const (
	userkey ctxkey = "autheduser"
)

type AuthedUser struct {
	UserID   int64
	Username string
}

func StoreUserInContext(ctx context.Context, userID int64, username string) context.Context {
	ctx = context.WithValue(ctx, userkey, &AuthedUser{
		UserID:   userID,
		Username: username,
	})
	return ctx
}

func UserFromContext(ctx context.Context) *AuthedUser {
	au, ok := ctx.Value(userkey).(*AuthedUser)
	if ok {
		return au
	}
	return nil
}
