package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// ExamPayloadKey returns the cache key for an exam's student payload
func (r *CacheKeyStruct) ExamPayloadKey(examID string) string {
	return fmt.Sprintf("exam:%s:payload", examID)
}

// ExamAnswerKey returns the cache key for an exam's answer key hash
func (r *CacheKeyStruct) ExamAnswerKey(examID string) string {
	return fmt.Sprintf("exam:%s:key", examID)
}

// StudentActiveAttemptKey returns the cache key for a student's currently
// open attempt on an exam
func (r *CacheKeyStruct) StudentActiveAttemptKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:active_attempt", studentID, examID)
}

// ExamMonitorChannel returns the Redis PubSub channel name for an exam's
// live monitor stream
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

var CacheKey = NewCacheKeyStruct()
