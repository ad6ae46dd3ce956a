package service

import "errors"

// 业务错误，handler 通过 errors.Is 映射为响应码
var (
	ErrInvalidParam        = errors.New("invalid parameter")
	ErrUserExists          = errors.New("username or email already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSelfRequest         = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends      = errors.New("already friends")
	ErrRequestPending      = errors.New("a pending friend request already exists")
	ErrRequestNotFound     = errors.New("friend request not found")
	ErrRequestProcessed    = errors.New("friend request already processed")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNotFriends          = errors.New("not friends")
	ErrMoodNotFound        = errors.New("mood entry not found")
	ErrPreferencesNotFound = errors.New("preferences not found")
)
