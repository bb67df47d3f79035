package auth

import (
	"context"
)

type ctxKey int

const (
	ctxSubjectID ctxKey = iota
	ctxEmail
)

func WithIdentity(ctx context.Context, subjectID, email string) context.Context {
	ctx = context.WithValue(ctx, ctxSubjectID, subjectID)
	ctx = context.WithValue(ctx, ctxEmail, email)
	return ctx
}

func SubjectID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxSubjectID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", ErrUnauthenticated
}

func Email(ctx context.Context) (string, error) {
	v := ctx.Value(ctxEmail)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", ErrUnauthenticated
}
