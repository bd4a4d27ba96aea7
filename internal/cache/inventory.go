package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix        = "user:%d"
	postKeyPrefix        = "post:%d"
	topTagsKeyPrefix     = "tags:top"
	verifyTokenKeyPrefix = "verify:%s"
)

const (
	UserTTL        = 5 * time.Minute
	PostTTL        = 5 * time.Minute
	TopTagsTTL     = 5 * time.Minute
	VerifyTokenTTL = 24 * time.Hour
)

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// TopTagsKey keys the tags-with-posts preview by its shape parameters.
func TopTagsKey(tagCount, postsPerTag int) string {
	return fmt.Sprintf("%s:%d:%d", topTagsKeyPrefix, tagCount, postsPerTag)
}

// VerifyTokenKey keys an email-verification token by the address it confirms.
func VerifyTokenKey(email string) string {
	return fmt.Sprintf(verifyTokenKeyPrefix, email)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePrefix drops every key under the given prefix, best-effort.
func InvalidatePrefix(ctx context.Context, prefix string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, prefix+"*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateTopTags drops every cached variant of the top-tags preview.
func InvalidateTopTags(ctx context.Context) {
	InvalidatePrefix(ctx, topTagsKeyPrefix)
}
