package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	MemberKeyPrefix   = "member:%d"
	ProfileKeyPrefix  = "profile:%d"
	AuthCodeKeyPrefix = "authcode:%s"
	BlacklistPrefix   = "blacklist:%s"
)

const (
	MemberTTL  = 5 * time.Minute
	ProfileTTL = 5 * time.Minute
)

func MemberKey(memberID uint) string {
	return fmt.Sprintf(MemberKeyPrefix, memberID)
}

func ProfileKey(memberID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, memberID)
}

// AuthCodeKey keys a pending email verification code by the code itself; the
// stored value is the address it was issued for.
func AuthCodeKey(code string) string {
	return fmt.Sprintf(AuthCodeKeyPrefix, code)
}

func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateMember(ctx context.Context, memberID uint) {
	Invalidate(ctx, MemberKey(memberID))
	Invalidate(ctx, ProfileKey(memberID))
}
