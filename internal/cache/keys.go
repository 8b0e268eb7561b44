package cache

import (
	"strconv"
	"strings"
)

const (
	GlobalKeyPrefix = "quizhub"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// AnswerKeyKey is where a quiz's answer key is cached.
func AnswerKeyKey(quizID int64) string {
	return GenerateCacheKey("quiz", "answer_key", strconv.FormatInt(quizID, 10))
}

// RevokedTokenKey marks a logged-out access token by its jti.
func RevokedTokenKey(tokenID string) string {
	return GenerateCacheKey("auth", "revoked", tokenID)
}
