package http

import "context"

func withActivityID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, activityIDKey{}, id)
}

func activityID(ctx context.Context) int {
	id, _ := ctx.Value(activityIDKey{}).(int)
	return id
}
