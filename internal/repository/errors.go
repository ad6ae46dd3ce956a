package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository 层统一错误定义
var (
	// ErrRecordNotFound 记录不存在
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey 唯一键冲突
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDatabase 数据库操作错误
	ErrDatabase = errors.New("database error")
)

// dbErrorRules 数据库错误映射规则
var dbErrorRules = map[error]error{
	gorm.ErrRecordNotFound: ErrRecordNotFound,
	gorm.ErrDuplicatedKey:  ErrDuplicateKey,
}

// WrapDBError 把 gorm 错误映射为仓储层错误，未识别的错误包装为 ErrDatabase 并保留原始信息
func WrapDBError(err error) error {
	if err == nil {
		return nil
	}
	for source, target := range dbErrorRules {
		if errors.Is(err, source) {
			return target
		}
	}
	return fmt.Errorf("%w: %v", ErrDatabase, err)
}
