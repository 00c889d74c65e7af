package cache

import (
	"fmt"
	"time"
)

const (
	PostKeyPrefix         = "post:%d"
	RevokedTokenKeyPrefix = "revoked_jti:%s"
)

const (
	PostTTL = 30 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}
