package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizPayloadKey returns the cache key for a full quiz definition
func (r *CacheKeyStruct) QuizPayloadKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:payload", quizID)
}

// CategoriesKey returns the cache key for the category list
func (r *CacheKeyStruct) CategoriesKey() string {
	return "catalog:categories"
}

// SessionKey returns the key holding a quiz session snapshot
func (r *CacheKeyStruct) SessionKey(sessionID string) string {
	return fmt.Sprintf("quiz_session:%s", sessionID)
}

// RateLimitKey returns the counter key for an IP within a fixed window
func (r *CacheKeyStruct) RateLimitKey(scope, ip string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, ip, window)
}

var CacheKey = NewCacheKeyStruct()
