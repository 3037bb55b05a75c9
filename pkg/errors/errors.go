package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrBookingOverlap 预订时间区间与既有预订重叠
// 事务内二次检查与数据库排他约束统一返回此错误，
// 调用方无须区分竞态被哪一层拦截
var ErrBookingOverlap = errors.New("该时段已被其他预订占用")
